package services

import (
	"context"
	"fmt"

	"blogfeed/models"
	"blogfeed/repositories"
)

// InteractionService toggles the per-user rows the engagement aggregator reads.
// A nil result with a nil error means the target post does not exist or is not published.
type InteractionService interface {
	ToggleReaction(ctx context.Context, postID, userID uint, reactionType models.ReactionType) (*models.ToggleResult, error)
	ToggleBookmark(ctx context.Context, postID, userID uint) (*models.ToggleResult, error)
	ToggleFollow(ctx context.Context, followerID, followeeID uint) (*models.ToggleResult, error)
	GetBookmarkedPosts(ctx context.Context, userID uint, page, pageSize int) ([]models.Post, error)
}

type interactionService struct {
	postRepo     repositories.PostRepository
	reactionRepo repositories.ReactionRepository
	bookmarkRepo repositories.BookmarkRepository
	followRepo   repositories.FollowRepository
	engagement   EngagementService
}

func NewInteractionService(
	postRepo repositories.PostRepository,
	reactionRepo repositories.ReactionRepository,
	bookmarkRepo repositories.BookmarkRepository,
	followRepo repositories.FollowRepository,
	engagement EngagementService,
) InteractionService {
	return &interactionService{
		postRepo:     postRepo,
		reactionRepo: reactionRepo,
		bookmarkRepo: bookmarkRepo,
		followRepo:   followRepo,
		engagement:   engagement,
	}
}

func (s *interactionService) ToggleReaction(ctx context.Context, postID, userID uint, reactionType models.ReactionType) (*models.ToggleResult, error) {
	if !reactionType.Valid() {
		return nil, models.ErrorValidation{Field: "type", Message: fmt.Sprintf("unknown reaction %q", reactionType)}
	}
	ok, err := s.isPublished(ctx, postID)
	if err != nil || !ok {
		return nil, err
	}

	existing, err := s.reactionRepo.Find(ctx, postID, userID, reactionType)
	if err != nil && !repositories.IsNotFound(err) {
		return nil, err
	}

	if err == nil {
		if err := s.reactionRepo.Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("remove reaction: %w", err)
		}
		if err := s.adjustLikes(ctx, postID, reactionType, -1); err != nil {
			return nil, err
		}
		return &models.ToggleResult{Active: false}, nil
	}

	reaction := &models.Reaction{PostID: postID, UserID: userID, Type: reactionType}
	if err := s.reactionRepo.Create(ctx, reaction); err != nil {
		if repositories.IsUniqueViolation(err) {
			return &models.ToggleResult{Active: true}, nil
		}
		return nil, fmt.Errorf("add reaction: %w", err)
	}
	if err := s.adjustLikes(ctx, postID, reactionType, 1); err != nil {
		return nil, err
	}
	return &models.ToggleResult{Active: true}, nil
}

func (s *interactionService) adjustLikes(ctx context.Context, postID uint, reactionType models.ReactionType, delta int) error {
	if reactionType != models.ReactionLike {
		return nil
	}
	if err := s.postRepo.IncrementCounter(ctx, postID, repositories.CounterLikes, delta); err != nil {
		return fmt.Errorf("update likes count: %w", err)
	}
	return nil
}

func (s *interactionService) ToggleBookmark(ctx context.Context, postID, userID uint) (*models.ToggleResult, error) {
	ok, err := s.isPublished(ctx, postID)
	if err != nil || !ok {
		return nil, err
	}

	existing, err := s.bookmarkRepo.Find(ctx, postID, userID)
	if err != nil && !repositories.IsNotFound(err) {
		return nil, err
	}

	if err == nil {
		if err := s.bookmarkRepo.Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("remove bookmark: %w", err)
		}
		if err := s.postRepo.IncrementCounter(ctx, postID, repositories.CounterBookmarks, -1); err != nil {
			return nil, fmt.Errorf("update bookmarks count: %w", err)
		}
		return &models.ToggleResult{Active: false}, nil
	}

	if err := s.bookmarkRepo.Create(ctx, &models.Bookmark{PostID: postID, UserID: userID}); err != nil {
		if repositories.IsUniqueViolation(err) {
			return &models.ToggleResult{Active: true}, nil
		}
		return nil, fmt.Errorf("add bookmark: %w", err)
	}
	if err := s.postRepo.IncrementCounter(ctx, postID, repositories.CounterBookmarks, 1); err != nil {
		return nil, fmt.Errorf("update bookmarks count: %w", err)
	}
	return &models.ToggleResult{Active: true}, nil
}

func (s *interactionService) ToggleFollow(ctx context.Context, followerID, followeeID uint) (*models.ToggleResult, error) {
	if followeeID == 0 {
		return nil, models.ErrorValidation{Field: "user_id", Message: "is required"}
	}
	if followerID == followeeID {
		return nil, models.ErrorValidation{Field: "user_id", Message: "cannot follow yourself"}
	}

	exists, err := s.followRepo.Exists(ctx, followerID, followeeID)
	if err != nil {
		return nil, err
	}
	if exists {
		if err := s.followRepo.Delete(ctx, followerID, followeeID); err != nil {
			return nil, fmt.Errorf("unfollow: %w", err)
		}
		return &models.ToggleResult{Active: false}, nil
	}

	err = s.followRepo.Create(ctx, &models.Follow{FollowerID: followerID, FolloweeID: followeeID})
	if err != nil && !repositories.IsUniqueViolation(err) {
		return nil, fmt.Errorf("follow: %w", err)
	}
	return &models.ToggleResult{Active: true}, nil
}

// GetBookmarkedPosts lists the user's bookmarked posts, newest bookmark first.
// Bookmarks on posts that are no longer published are skipped.
func (s *interactionService) GetBookmarkedPosts(ctx context.Context, userID uint, page, pageSize int) ([]models.Post, error) {
	if page < 1 || pageSize < 1 {
		return nil, models.ErrorValidation{Field: "page", Message: "page and page_size must be at least 1"}
	}

	ids, err := s.bookmarkRepo.ListPostIDsByUser(ctx, userID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("load bookmarks: %w", err)
	}

	found, err := s.postRepo.ListPublishedByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	posts := make([]models.Post, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			posts = append(posts, p)
		}
	}

	if err := s.engagement.Enrich(ctx, posts, userID); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *interactionService) isPublished(ctx context.Context, postID uint) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if repositories.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return post.IsPublished(), nil
}
