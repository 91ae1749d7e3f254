package services

import (
	"context"
	"fmt"

	"blogfeed/models"
	"blogfeed/repositories"
)

// EngagementService attaches reaction counts and viewer state to posts.
// It issues one query for counts and, with a viewer, two more for the
// viewer's reactions and bookmarks, whatever the batch size.
type EngagementService interface {
	Enrich(ctx context.Context, posts []models.Post, viewerID uint) error
	EnrichOne(ctx context.Context, post *models.Post, viewerID uint) error
}

type engagementService struct {
	reactionRepo repositories.ReactionRepository
	bookmarkRepo repositories.BookmarkRepository
}

func NewEngagementService(reactionRepo repositories.ReactionRepository, bookmarkRepo repositories.BookmarkRepository) EngagementService {
	return &engagementService{
		reactionRepo: reactionRepo,
		bookmarkRepo: bookmarkRepo,
	}
}

func (s *engagementService) Enrich(ctx context.Context, posts []models.Post, viewerID uint) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	rows, err := s.reactionRepo.CountByPosts(ctx, ids)
	if err != nil {
		return fmt.Errorf("count reactions: %w", err)
	}
	counts := make(map[uint]map[models.ReactionType]int)
	for _, row := range rows {
		if counts[row.PostID] == nil {
			counts[row.PostID] = make(map[models.ReactionType]int)
		}
		counts[row.PostID][row.Type] = row.Count
	}

	var viewerReactions map[uint][]models.ReactionType
	var bookmarked map[uint]bool
	if viewerID != 0 {
		reactions, err := s.reactionRepo.ListByUser(ctx, viewerID, ids)
		if err != nil {
			return fmt.Errorf("load viewer reactions: %w", err)
		}
		viewerReactions = make(map[uint][]models.ReactionType)
		for _, r := range reactions {
			viewerReactions[r.PostID] = append(viewerReactions[r.PostID], r.Type)
		}

		bookmarks, err := s.bookmarkRepo.ListByUser(ctx, viewerID, ids)
		if err != nil {
			return fmt.Errorf("load viewer bookmarks: %w", err)
		}
		bookmarked = make(map[uint]bool, len(bookmarks))
		for _, b := range bookmarks {
			bookmarked[b.PostID] = true
		}
	}

	for i := range posts {
		p := &posts[i]
		p.ReactionCounts = counts[p.ID]
		if p.ReactionCounts == nil {
			p.ReactionCounts = map[models.ReactionType]int{}
		}
		p.ViewerReactions = nil
		p.LikedByViewer = false
		p.BookmarkedByViewer = false
		if viewerID == 0 {
			continue
		}

		p.ViewerReactions = viewerReactions[p.ID]
		if p.ViewerReactions == nil {
			p.ViewerReactions = []models.ReactionType{}
		}
		for _, t := range p.ViewerReactions {
			if t == models.ReactionLike {
				p.LikedByViewer = true
				break
			}
		}
		p.BookmarkedByViewer = bookmarked[p.ID]
	}

	return nil
}

func (s *engagementService) EnrichOne(ctx context.Context, post *models.Post, viewerID uint) error {
	batch := []models.Post{*post}
	if err := s.Enrich(ctx, batch, viewerID); err != nil {
		return err
	}
	*post = batch[0]
	return nil
}
