package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"blogfeed/models"
	"blogfeed/repositories"
)

// NormalizeTagName is the canonical form tags are stored and looked up by.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeTagNames normalizes names, dropping blanks and duplicates while
// keeping first-seen order.
func NormalizeTagNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		n := NormalizeTagName(name)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// MaxTagNameLength is the size of the tag name column, in characters.
const MaxTagNameLength = 100

// ValidateTagNames rejects names that do not fit the tag column once
// normalized. It makes no repository calls.
func ValidateTagNames(names []string) error {
	for _, name := range NormalizeTagNames(names) {
		if utf8.RuneCountInString(name) > MaxTagNameLength {
			return models.ErrorValidation{Field: "tags", Message: fmt.Sprintf("tag names are limited to %d characters", MaxTagNameLength)}
		}
	}
	return nil
}

type TagService interface {
	LinkTags(ctx context.Context, postID uint, names []string) ([]models.Tag, error)
	SyncTags(ctx context.Context, postID uint, names []string) ([]models.Tag, error)
	LinkTagByName(ctx context.Context, postID uint, name string) (*models.Tag, error)
	UnlinkTagByName(ctx context.Context, postID uint, name string) (bool, error)
	GetTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
}

type tagService struct {
	tagRepo repositories.TagRepository
}

func NewTagService(tagRepo repositories.TagRepository) TagService {
	return &tagService{tagRepo: tagRepo}
}

// LinkTags makes sure every named tag exists and is linked to the post.
// The number of repository calls does not depend on how many names are given.
func (s *tagService) LinkTags(ctx context.Context, postID uint, names []string) ([]models.Tag, error) {
	if err := ValidateTagNames(names); err != nil {
		return nil, err
	}
	names = NormalizeTagNames(names)
	if len(names) == 0 {
		return []models.Tag{}, nil
	}

	tags, err := s.tagRepo.GetByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	known := make(map[string]bool, len(tags))
	for _, tag := range tags {
		known[tag.Name] = true
	}

	var missing []models.Tag
	var missingNames []string
	for _, name := range names {
		if !known[name] {
			missing = append(missing, models.Tag{Name: name})
			missingNames = append(missingNames, name)
		}
	}

	if len(missing) > 0 {
		if err := s.tagRepo.CreateMissing(ctx, missing); err != nil {
			return nil, fmt.Errorf("create tags: %w", err)
		}
		// Reload so rows created concurrently by another writer get their ids too
		created, err := s.tagRepo.GetByNames(ctx, missingNames)
		if err != nil {
			return nil, fmt.Errorf("reload tags: %w", err)
		}
		tags = append(tags, created...)
	}

	ids := make([]uint, 0, len(tags))
	for _, tag := range tags {
		ids = append(ids, tag.ID)
	}

	linked, err := s.tagRepo.GetLinkedTagIDs(ctx, postID, ids)
	if err != nil {
		return nil, fmt.Errorf("load tag links: %w", err)
	}
	isLinked := make(map[uint]bool, len(linked))
	for _, id := range linked {
		isLinked[id] = true
	}

	var links []models.PostTag
	for _, id := range ids {
		if !isLinked[id] {
			links = append(links, models.PostTag{PostID: postID, TagID: id})
		}
	}
	if err := s.tagRepo.CreateLinks(ctx, links); err != nil {
		return nil, fmt.Errorf("link tags: %w", err)
	}

	return tags, nil
}

// SyncTags replaces the post's tag set with names.
func (s *tagService) SyncTags(ctx context.Context, postID uint, names []string) ([]models.Tag, error) {
	tags, err := s.LinkTags(ctx, postID, names)
	if err != nil {
		return nil, err
	}

	keep := make([]uint, 0, len(tags))
	for _, tag := range tags {
		keep = append(keep, tag.ID)
	}
	if err := s.tagRepo.DeleteLinksExcept(ctx, postID, keep); err != nil {
		return nil, fmt.Errorf("unlink tags: %w", err)
	}

	return tags, nil
}

func (s *tagService) LinkTagByName(ctx context.Context, postID uint, name string) (*models.Tag, error) {
	name = NormalizeTagName(name)
	if name == "" {
		return nil, models.ErrorValidation{Field: "name", Message: "tag name is required"}
	}
	if utf8.RuneCountInString(name) > MaxTagNameLength {
		return nil, models.ErrorValidation{Field: "name", Message: fmt.Sprintf("tag names are limited to %d characters", MaxTagNameLength)}
	}

	tag, err := s.tagRepo.GetByName(ctx, name)
	if repositories.IsNotFound(err) {
		tag = &models.Tag{Name: name}
		err = s.tagRepo.Create(ctx, tag)
		if repositories.IsUniqueViolation(err) {
			// Lost a race with another writer creating the same tag
			tag, err = s.tagRepo.GetByName(ctx, name)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("find or create tag %q: %w", name, err)
	}

	linked, err := s.tagRepo.GetLinkedTagIDs(ctx, postID, []uint{tag.ID})
	if err != nil {
		return nil, fmt.Errorf("load tag links: %w", err)
	}
	if len(linked) == 0 {
		if err := s.tagRepo.CreateLinks(ctx, []models.PostTag{{PostID: postID, TagID: tag.ID}}); err != nil {
			return nil, fmt.Errorf("link tag %q: %w", name, err)
		}
	}

	return tag, nil
}

// UnlinkTagByName removes the link and reports whether one existed. The tag itself is kept.
func (s *tagService) UnlinkTagByName(ctx context.Context, postID uint, name string) (bool, error) {
	tag, err := s.tagRepo.GetByName(ctx, NormalizeTagName(name))
	if repositories.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	n, err := s.tagRepo.DeleteLinks(ctx, postID, []uint{tag.ID})
	if err != nil {
		return false, fmt.Errorf("unlink tag %q: %w", tag.Name, err)
	}
	return n > 0, nil
}

func (s *tagService) GetTags(ctx context.Context) ([]models.Tag, error) {
	return s.tagRepo.GetAll(ctx)
}

func (s *tagService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	tag, err := s.tagRepo.GetByID(ctx, id)
	if repositories.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tag, nil
}
