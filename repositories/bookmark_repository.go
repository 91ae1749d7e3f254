package repositories

import (
	"context"

	"blogfeed/models"

	"gorm.io/gorm"
)

type BookmarkRepository interface {
	ListByUser(ctx context.Context, userID uint, postIDs []uint) ([]models.Bookmark, error)
	ListPostIDsByUser(ctx context.Context, userID uint, offset, limit int) ([]uint, error)
	Find(ctx context.Context, postID, userID uint) (*models.Bookmark, error)
	Create(ctx context.Context, bookmark *models.Bookmark) error
	Delete(ctx context.Context, id uint) error
}

type bookmarkRepository struct {
	db *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

func (r *bookmarkRepository) ListByUser(ctx context.Context, userID uint, postIDs []uint) ([]models.Bookmark, error) {
	var bookmarks []models.Bookmark
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Find(&bookmarks).Error
	return bookmarks, err
}

// ListPostIDsByUser returns bookmarked post ids, newest bookmark first.
func (r *bookmarkRepository) ListPostIDsByUser(ctx context.Context, userID uint, offset, limit int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Bookmark{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Pluck("post_id", &ids).Error
	return ids, err
}

func (r *bookmarkRepository) Find(ctx context.Context, postID, userID uint) (*models.Bookmark, error) {
	var bookmark models.Bookmark
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&bookmark).Error
	return &bookmark, err
}

func (r *bookmarkRepository) Create(ctx context.Context, bookmark *models.Bookmark) error {
	return r.db.WithContext(ctx).Create(bookmark).Error
}

func (r *bookmarkRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Bookmark{}, id).Error
}
