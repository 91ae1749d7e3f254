package repositories

import (
	"context"

	"blogfeed/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	CreateMissing(ctx context.Context, tags []models.Tag) error
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	GetByNames(ctx context.Context, names []string) ([]models.Tag, error)
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	GetAll(ctx context.Context) ([]models.Tag, error)
	GetLinkedTagIDs(ctx context.Context, postID uint, tagIDs []uint) ([]uint, error)
	CreateLinks(ctx context.Context, links []models.PostTag) error
	DeleteLinks(ctx context.Context, postID uint, tagIDs []uint) (int64, error)
	DeleteLinksExcept(ctx context.Context, postID uint, keepTagIDs []uint) error
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

// CreateMissing inserts tags in one statement, skipping names that already exist.
// IDs of skipped rows are not filled in; callers reload by name.
func (r *tagRepository) CreateMissing(ctx context.Context, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&tags).Error
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	return &tag, err
}

func (r *tagRepository) GetByNames(ctx context.Context, names []string) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&tags).Error
	return tags, err
}

func (r *tagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).First(&tag, id).Error
	return &tag, err
}

func (r *tagRepository) GetAll(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Order("name").Find(&tags).Error
	return tags, err
}

func (r *tagRepository) GetLinkedTagIDs(ctx context.Context, postID uint, tagIDs []uint) ([]uint, error) {
	var ids []uint
	if len(tagIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).Model(&models.PostTag{}).
		Where("post_id = ? AND tag_id IN ?", postID, tagIDs).
		Pluck("tag_id", &ids).Error
	return ids, err
}

func (r *tagRepository) CreateLinks(ctx context.Context, links []models.PostTag) error {
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
}

func (r *tagRepository) DeleteLinks(ctx context.Context, postID uint, tagIDs []uint) (int64, error) {
	if len(tagIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND tag_id IN ?", postID, tagIDs).
		Delete(&models.PostTag{})
	return res.RowsAffected, res.Error
}

func (r *tagRepository) DeleteLinksExcept(ctx context.Context, postID uint, keepTagIDs []uint) error {
	query := r.db.WithContext(ctx).Where("post_id = ?", postID)
	if len(keepTagIDs) > 0 {
		query = query.Where("tag_id NOT IN ?", keepTagIDs)
	}
	return query.Delete(&models.PostTag{}).Error
}
