package services

import (
	"context"
	"fmt"

	"blogfeed/models"
	"blogfeed/repositories"
)

type FeedKind string

const (
	FeedLatest   FeedKind = "latest"
	FeedTop      FeedKind = "top"
	FeedByAuthor FeedKind = "author"
	FeedByTag    FeedKind = "tag"
	FeedRelevant FeedKind = "relevant"
)

// FeedRequest selects one page of one feed. AuthorID is read by FeedByAuthor
// and TagName by FeedByTag. ViewerID 0 means anonymous.
type FeedRequest struct {
	Kind     FeedKind
	AuthorID uint
	TagName  string
	ViewerID uint
	Page     int
	PageSize int
}

func (r FeedRequest) offset() int {
	return (r.Page - 1) * r.PageSize
}

type FeedService interface {
	Get(ctx context.Context, req FeedRequest) ([]models.Post, error)
}

type feedService struct {
	postRepo   repositories.PostRepository
	followRepo repositories.FollowRepository
	engagement EngagementService
}

func NewFeedService(postRepo repositories.PostRepository, followRepo repositories.FollowRepository, engagement EngagementService) FeedService {
	return &feedService{
		postRepo:   postRepo,
		followRepo: followRepo,
		engagement: engagement,
	}
}

func (s *feedService) Get(ctx context.Context, req FeedRequest) ([]models.Post, error) {
	if req.Page < 1 {
		return nil, models.ErrorValidation{Field: "page", Message: "must be at least 1"}
	}
	if req.PageSize < 1 {
		return nil, models.ErrorValidation{Field: "page_size", Message: "must be at least 1"}
	}

	query := repositories.PostQuery{
		OrderBy: repositories.OrderByPublishedAt,
		Offset:  req.offset(),
		Limit:   req.PageSize,
	}

	var posts []models.Post
	var err error
	switch req.Kind {
	case FeedLatest:
		posts, err = s.postRepo.ListPublished(ctx, query)
	case FeedTop:
		query.OrderBy = repositories.OrderByLikes
		posts, err = s.postRepo.ListPublished(ctx, query)
	case FeedByAuthor:
		if req.AuthorID == 0 {
			return nil, models.ErrorValidation{Field: "author_id", Message: "is required"}
		}
		query.AuthorIDs = []uint{req.AuthorID}
		posts, err = s.postRepo.ListPublished(ctx, query)
	case FeedByTag:
		query.TagName = NormalizeTagName(req.TagName)
		if query.TagName == "" {
			return nil, models.ErrorValidation{Field: "tag", Message: "is required"}
		}
		posts, err = s.postRepo.ListPublished(ctx, query)
	case FeedRelevant:
		posts, err = s.relevant(ctx, req, query)
	default:
		return nil, models.ErrorValidation{Field: "kind", Message: fmt.Sprintf("unknown feed %q", req.Kind)}
	}
	if err != nil {
		return nil, fmt.Errorf("load %s feed: %w", req.Kind, err)
	}

	if posts == nil {
		posts = []models.Post{}
	}
	if err := s.engagement.Enrich(ctx, posts, req.ViewerID); err != nil {
		return nil, err
	}
	return posts, nil
}

// relevant pages through posts by authors the viewer follows, then tops the
// page up with the newest posts by everyone else. The top-up always starts
// from the newest post, so later pages can repeat it.
func (s *feedService) relevant(ctx context.Context, req FeedRequest, query repositories.PostQuery) ([]models.Post, error) {
	if req.ViewerID == 0 {
		return s.postRepo.ListPublished(ctx, query)
	}

	followees, err := s.followRepo.FolloweeIDs(ctx, req.ViewerID)
	if err != nil {
		return nil, fmt.Errorf("load followees: %w", err)
	}

	var posts []models.Post
	if len(followees) > 0 {
		query.AuthorIDs = followees
		posts, err = s.postRepo.ListPublished(ctx, query)
		if err != nil {
			return nil, err
		}
	}

	if missing := req.PageSize - len(posts); missing > 0 {
		padding, err := s.postRepo.ListPublished(ctx, repositories.PostQuery{
			ExcludeAuthorIDs: followees,
			OrderBy:          repositories.OrderByPublishedAt,
			Offset:           0,
			Limit:            missing,
		})
		if err != nil {
			return nil, err
		}
		posts = append(posts, padding...)
	}

	return posts, nil
}
