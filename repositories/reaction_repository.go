package repositories

import (
	"context"

	"blogfeed/models"

	"gorm.io/gorm"
)

type ReactionRepository interface {
	CountByPosts(ctx context.Context, postIDs []uint) ([]models.ReactionCount, error)
	ListByUser(ctx context.Context, userID uint, postIDs []uint) ([]models.Reaction, error)
	Find(ctx context.Context, postID, userID uint, reactionType models.ReactionType) (*models.Reaction, error)
	Create(ctx context.Context, reaction *models.Reaction) error
	Delete(ctx context.Context, id uint) error
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) CountByPosts(ctx context.Context, postIDs []uint) ([]models.ReactionCount, error) {
	var rows []models.ReactionCount
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Select("post_id, reaction_type, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id, reaction_type").
		Scan(&rows).Error
	return rows, err
}

func (r *reactionRepository) ListByUser(ctx context.Context, userID uint, postIDs []uint) ([]models.Reaction, error) {
	var reactions []models.Reaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Order("id").
		Find(&reactions).Error
	return reactions, err
}

func (r *reactionRepository) Find(ctx context.Context, postID, userID uint, reactionType models.ReactionType) (*models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ? AND reaction_type = ?", postID, userID, string(reactionType)).
		First(&reaction).Error
	return &reaction, err
}

func (r *reactionRepository) Create(ctx context.Context, reaction *models.Reaction) error {
	return r.db.WithContext(ctx).Create(reaction).Error
}

func (r *reactionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Reaction{}, id).Error
}
