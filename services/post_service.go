package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"blogfeed/models"
	"blogfeed/repositories"
)

// A unique-index hit on slug means another writer took it between Resolve
// and the insert. Slugs are resolved again this many times before giving up.
const maxSlugConflictRetries = 3

type PostService interface {
	CreatePost(ctx context.Context, authorID uint, req models.CreatePostRequest) (*models.Post, error)
	UpdatePost(ctx context.Context, id uint, actor models.Actor, req models.UpdatePostRequest) (*models.Post, error)
	GetPost(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	GetPostBySlug(ctx context.Context, languageCode, slug string, viewerID uint) (*models.Post, error)

	PublishPost(ctx context.Context, id uint, actorID uint) (bool, error)
	UnpublishPost(ctx context.Context, id uint, actorID uint) (bool, error)
	DeletePost(ctx context.Context, id uint, actorID uint) (bool, error)
	PurgePost(ctx context.Context, id uint, actor models.Actor) (bool, error)

	AddTag(ctx context.Context, id uint, actor models.Actor, name string) (*models.Tag, error)
	RemoveTag(ctx context.Context, id uint, actor models.Actor, name string) (bool, error)

	ReconcileCounters(ctx context.Context) (int64, error)
}

type postService struct {
	postRepo        repositories.PostRepository
	translationRepo repositories.TranslationRepository
	translations    TranslationManager
	tags            TagService
	engagement      EngagementService
}

func NewPostService(
	postRepo repositories.PostRepository,
	translationRepo repositories.TranslationRepository,
	translations TranslationManager,
	tags TagService,
	engagement EngagementService,
) PostService {
	return &postService{
		postRepo:        postRepo,
		translationRepo: translationRepo,
		translations:    translations,
		tags:            tags,
		engagement:      engagement,
	}
}

func (s *postService) CreatePost(ctx context.Context, authorID uint, req models.CreatePostRequest) (*models.Post, error) {
	// Tags are linked after the insert, so they are checked up front
	if err := ValidateTagNames(req.Tags); err != nil {
		return nil, err
	}

	var post *models.Post
	for attempt := 0; ; attempt++ {
		translations, readingTime, err := s.translations.BuildForCreate(ctx, req.DefaultLanguage, req.Translations)
		if err != nil {
			return nil, err
		}

		post = &models.Post{
			AuthorID:        authorID,
			DefaultLanguage: NormalizeLanguageCode(req.DefaultLanguage),
			CoverImage:      req.CoverImage,
			Status:          models.PostStatusDraft,
			ReadingTime:     readingTime,
			Translations:    translations,
		}
		if req.Publish {
			now := time.Now()
			post.Status = models.PostStatusPublished
			post.PublishedAt = &now
		}

		err = s.postRepo.Create(ctx, post)
		if err == nil {
			break
		}
		if !repositories.IsUniqueViolation(err) {
			return nil, fmt.Errorf("create post: %w", err)
		}
		if attempt == maxSlugConflictRetries {
			return nil, models.ErrorConflict{Invariant: "unique_slug", Message: "could not reserve a unique slug"}
		}
		log.Printf("[post] slug conflict creating post for author %d, retrying (%d/%d)", authorID, attempt+1, maxSlugConflictRetries)
	}

	// Tags are linked once for the whole set after the post has an id
	if len(req.Tags) > 0 {
		if _, err := s.tags.LinkTags(ctx, post.ID, req.Tags); err != nil {
			return nil, err
		}
	}

	return s.loadPost(ctx, post.ID, authorID)
}

func (s *postService) UpdatePost(ctx context.Context, id uint, actor models.Actor, req models.UpdatePostRequest) (*models.Post, error) {
	post, err := s.findPost(ctx, id)
	if err != nil || post == nil {
		return nil, err
	}
	if post.AuthorID != actor.UserID && !actor.IsAdmin() {
		return nil, models.ErrorForbidden{Message: "only the author can edit this post"}
	}

	if err := ValidateTagNames(req.Tags); err != nil {
		return nil, err
	}

	defaultLanguage := post.DefaultLanguage
	if req.DefaultLanguage != nil {
		defaultLanguage = NormalizeLanguageCode(*req.DefaultLanguage)
		if defaultLanguage == "" {
			return nil, models.ErrorValidation{Field: "default_language", Message: "cannot be empty"}
		}
	}

	for attempt := 0; ; attempt++ {
		plan, err := s.translations.PlanUpdate(ctx, post, defaultLanguage, req.Translations)
		if err != nil {
			return nil, err
		}

		updated := *post
		updated.DefaultLanguage = defaultLanguage
		updated.ReadingTime = plan.ReadingTime
		if req.CoverImage != nil {
			updated.CoverImage = *req.CoverImage
		}

		err = s.postRepo.SaveWithTranslations(ctx, &updated, plan.Changes)
		if err == nil {
			break
		}
		if !repositories.IsUniqueViolation(err) {
			return nil, fmt.Errorf("update post %d: %w", id, err)
		}
		if attempt == maxSlugConflictRetries {
			return nil, models.ErrorConflict{Invariant: "unique_slug", Message: "could not reserve a unique slug"}
		}
		log.Printf("[post] slug conflict updating post %d, retrying (%d/%d)", id, attempt+1, maxSlugConflictRetries)
	}

	if req.Tags != nil {
		if _, err := s.tags.SyncTags(ctx, id, req.Tags); err != nil {
			return nil, err
		}
	}

	return s.loadPost(ctx, id, actor.UserID)
}

// GetPost returns a published post, or a draft when the viewer wrote it.
func (s *postService) GetPost(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	post, err := s.findPost(ctx, id)
	if err != nil || post == nil {
		return nil, err
	}
	if !post.IsPublished() && (viewerID == 0 || post.AuthorID != viewerID) {
		return nil, nil
	}

	if err := s.engagement.EnrichOne(ctx, post, viewerID); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPostBySlug is the public read path and counts a view.
func (s *postService) GetPostBySlug(ctx context.Context, languageCode, slug string, viewerID uint) (*models.Post, error) {
	translation, err := s.translationRepo.GetBySlug(ctx, NormalizeLanguageCode(languageCode), slug)
	if repositories.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	post, err := s.findPost(ctx, translation.PostID)
	if err != nil || post == nil || !post.IsPublished() {
		return nil, err
	}

	if err := s.postRepo.IncrementCounter(ctx, post.ID, repositories.CounterViews, 1); err != nil {
		return nil, fmt.Errorf("count view: %w", err)
	}
	post.ViewsCount++

	if err := s.engagement.EnrichOne(ctx, post, viewerID); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) PublishPost(ctx context.Context, id uint, actorID uint) (bool, error) {
	post, err := s.findOwnedPost(ctx, id, actorID)
	if err != nil || post == nil {
		return false, err
	}

	if post.Status == models.PostStatusPublished && post.PublishedAt != nil {
		return true, nil
	}

	post.Status = models.PostStatusPublished
	if post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return false, fmt.Errorf("publish post %d: %w", id, err)
	}
	return true, nil
}

func (s *postService) UnpublishPost(ctx context.Context, id uint, actorID uint) (bool, error) {
	post, err := s.findOwnedPost(ctx, id, actorID)
	if err != nil || post == nil {
		return false, err
	}

	if post.Status == models.PostStatusDraft && post.PublishedAt == nil {
		return true, nil
	}

	post.Status = models.PostStatusDraft
	post.PublishedAt = nil
	if err := s.postRepo.Update(ctx, post); err != nil {
		return false, fmt.Errorf("unpublish post %d: %w", id, err)
	}
	return true, nil
}

func (s *postService) DeletePost(ctx context.Context, id uint, actorID uint) (bool, error) {
	post, err := s.postRepo.GetByIDUnscoped(ctx, id)
	if repositories.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if post.AuthorID != actorID {
		return false, models.ErrorForbidden{Message: "only the author can delete this post"}
	}
	if post.DeletedAt.Valid {
		return false, models.ErrorConflict{Invariant: "already_deleted", Message: "post is already deleted"}
	}

	if err := s.postRepo.SoftDelete(ctx, id); err != nil {
		return false, fmt.Errorf("delete post %d: %w", id, err)
	}
	return true, nil
}

// PurgePost removes a post and every row that belongs to it, deleted or not.
func (s *postService) PurgePost(ctx context.Context, id uint, actor models.Actor) (bool, error) {
	if !actor.IsAdmin() {
		return false, models.ErrorForbidden{Message: "only admins can purge posts"}
	}

	_, err := s.postRepo.GetByIDUnscoped(ctx, id)
	if repositories.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.postRepo.Purge(ctx, id); err != nil {
		return false, fmt.Errorf("purge post %d: %w", id, err)
	}
	log.Printf("[post] post %d purged by user %d", id, actor.UserID)
	return true, nil
}

func (s *postService) AddTag(ctx context.Context, id uint, actor models.Actor, name string) (*models.Tag, error) {
	post, err := s.findPost(ctx, id)
	if err != nil || post == nil {
		return nil, err
	}
	if post.AuthorID != actor.UserID && !actor.IsAdmin() {
		return nil, models.ErrorForbidden{Message: "only the author can tag this post"}
	}
	return s.tags.LinkTagByName(ctx, id, name)
}

func (s *postService) RemoveTag(ctx context.Context, id uint, actor models.Actor, name string) (bool, error) {
	post, err := s.findPost(ctx, id)
	if err != nil || post == nil {
		return false, err
	}
	if post.AuthorID != actor.UserID && !actor.IsAdmin() {
		return false, models.ErrorForbidden{Message: "only the author can untag this post"}
	}
	return s.tags.UnlinkTagByName(ctx, id, name)
}

func (s *postService) ReconcileCounters(ctx context.Context) (int64, error) {
	n, err := s.postRepo.ReconcileCounters(ctx)
	if err != nil {
		return 0, fmt.Errorf("reconcile counters: %w", err)
	}
	return n, nil
}

// findPost returns nil without error when the post does not exist or is deleted.
func (s *postService) findPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if repositories.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) findOwnedPost(ctx context.Context, id uint, actorID uint) (*models.Post, error) {
	post, err := s.findPost(ctx, id)
	if err != nil || post == nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, models.ErrorForbidden{Message: "only the author can change this post"}
	}
	return post, nil
}

func (s *postService) loadPost(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.engagement.EnrichOne(ctx, post, viewerID); err != nil {
		return nil, err
	}
	return post, nil
}
