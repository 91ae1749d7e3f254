package repositories

import (
	"context"

	"blogfeed/models"

	"gorm.io/gorm"
)

type TranslationRepository interface {
	SlugExists(ctx context.Context, languageCode, slug string, excludePostID uint) (bool, error)
	GetBySlug(ctx context.Context, languageCode, slug string) (*models.PostTranslation, error)
}

type translationRepository struct {
	db *gorm.DB
}

func NewTranslationRepository(db *gorm.DB) TranslationRepository {
	return &translationRepository{db: db}
}

// SlugExists reports whether another post already uses slug in languageCode.
func (r *translationRepository) SlugExists(ctx context.Context, languageCode, slug string, excludePostID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PostTranslation{}).
		Where("language_code = ? AND slug = ?", languageCode, slug)
	if excludePostID > 0 {
		query = query.Where("post_id <> ?", excludePostID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *translationRepository) GetBySlug(ctx context.Context, languageCode, slug string) (*models.PostTranslation, error) {
	var translation models.PostTranslation
	err := r.db.WithContext(ctx).
		Where("language_code = ? AND slug = ?", languageCode, slug).
		First(&translation).Error
	return &translation, err
}
