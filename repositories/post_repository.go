package repositories

import (
	"context"
	"fmt"
	"time"

	"blogfeed/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostOrder string

const (
	OrderByPublishedAt PostOrder = "published_at"
	OrderByLikes       PostOrder = "likes_count"
)

// PostCounter names a denormalized counter column on posts.
type PostCounter string

const (
	CounterLikes     PostCounter = "likes_count"
	CounterBookmarks PostCounter = "bookmarks_count"
	CounterViews     PostCounter = "views_count"
)

// PostQuery filters ListPublished. Empty slices and strings mean no filter.
type PostQuery struct {
	AuthorIDs        []uint
	ExcludeAuthorIDs []uint
	TagName          string
	OrderBy          PostOrder
	Offset           int
	Limit            int
}

// TranslationChanges is the write set of a translation update.
type TranslationChanges struct {
	Create    []models.PostTranslation
	Update    []models.PostTranslation
	DeleteIDs []uint
}

func (c TranslationChanges) Empty() bool {
	return len(c.Create) == 0 && len(c.Update) == 0 && len(c.DeleteIDs) == 0
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByIDUnscoped(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	SaveWithTranslations(ctx context.Context, post *models.Post, changes TranslationChanges) error
	SoftDelete(ctx context.Context, id uint) error
	Purge(ctx context.Context, id uint) error
	ListPublished(ctx context.Context, q PostQuery) ([]models.Post, error)
	ListPublishedByIDs(ctx context.Context, ids []uint) ([]models.Post, error)
	IncrementCounter(ctx context.Context, id uint, counter PostCounter, delta int) error
	ReconcileCounters(ctx context.Context) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Columns written by Update. Counters are only touched through IncrementCounter.
var postUpdateColumns = []string{"default_language", "cover_image", "status", "reading_time", "published_at"}

func orderTranslations(db *gorm.DB) *gorm.DB {
	return db.Order("language_code")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit("Tags").Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Translations", orderTranslations).
		Preload("Tags").
		First(&post, id).Error
	return &post, err
}

func (r *postRepository) GetByIDUnscoped(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Unscoped().First(&post, id).Error
	return &post, err
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Model(post).Select(postUpdateColumns).Omit(clause.Associations).Updates(post).Error
}

func (r *postRepository) SaveWithTranslations(ctx context.Context, post *models.Post, changes TranslationChanges) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !changes.Empty() {
			if err := saveTranslations(tx, post.ID, changes); err != nil {
				return err
			}
		}
		return tx.Model(post).Select(postUpdateColumns).Omit(clause.Associations).Updates(post).Error
	})
}

func saveTranslations(tx *gorm.DB, postID uint, changes TranslationChanges) error {
	// Deletes go first so a freed slug can be reused by the same write.
	if len(changes.DeleteIDs) > 0 {
		err := tx.Where("post_id = ? AND id IN ?", postID, changes.DeleteIDs).
			Delete(&models.PostTranslation{}).Error
		if err != nil {
			return err
		}
	}

	for i := range changes.Update {
		t := &changes.Update[i]
		if err := tx.Model(t).Select("title", "body", "slug").Updates(t).Error; err != nil {
			return err
		}
	}

	if len(changes.Create) == 0 {
		return nil
	}
	for i := range changes.Create {
		changes.Create[i].PostID = postID
	}
	return tx.Create(&changes.Create).Error
}

func (r *postRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.PostStatusDraft,
			"published_at": nil,
			"deleted_at":   time.Now(),
		}).Error
}

func (r *postRepository) Purge(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		children := []interface{}{
			&models.PostTag{},
			&models.Reaction{},
			&models.Bookmark{},
			&models.PostTranslation{},
		}
		for _, child := range children {
			if err := tx.Where("post_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(&models.Post{}, id).Error
	})
}

func (r *postRepository) ListPublished(ctx context.Context, q PostQuery) ([]models.Post, error) {
	var posts []models.Post

	query := r.db.WithContext(ctx).Model(&models.Post{}).
		Preload("Translations", orderTranslations).
		Preload("Tags").
		Where("posts.status = ?", models.PostStatusPublished)

	if len(q.AuthorIDs) > 0 {
		query = query.Where("posts.author_id IN ?", q.AuthorIDs)
	}
	if len(q.ExcludeAuthorIDs) > 0 {
		query = query.Where("posts.author_id NOT IN ?", q.ExcludeAuthorIDs)
	}
	if q.TagName != "" {
		query = query.Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name = ?", q.TagName)
	}

	switch q.OrderBy {
	case OrderByLikes:
		query = query.Order("posts.likes_count DESC").Order("posts.published_at DESC")
	default:
		query = query.Order("posts.published_at DESC")
	}
	query = query.Order("posts.id DESC")

	err := query.Offset(q.Offset).Limit(q.Limit).Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListPublishedByIDs(ctx context.Context, ids []uint) ([]models.Post, error) {
	var posts []models.Post
	if len(ids) == 0 {
		return posts, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Translations", orderTranslations).
		Preload("Tags").
		Where("id IN ? AND status = ?", ids, models.PostStatusPublished).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) IncrementCounter(ctx context.Context, id uint, counter PostCounter, delta int) error {
	switch counter {
	case CounterLikes, CounterBookmarks, CounterViews:
	default:
		return fmt.Errorf("unknown counter %q", counter)
	}

	column := clause.Column{Name: string(counter)}
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn(string(counter), gorm.Expr("CASE WHEN ? + ? < 0 THEN 0 ELSE ? + ? END", column, delta, column, delta)).
		Error
}

// ReconcileCounters recomputes likes and bookmarks from the source rows and
// returns how many posts had drifted.
func (r *postRepository) ReconcileCounters(ctx context.Context) (int64, error) {
	const likes = "(SELECT COUNT(*) FROM reactions WHERE reactions.post_id = posts.id AND reactions.reaction_type = @like)"
	const bookmarks = "(SELECT COUNT(*) FROM bookmarks WHERE bookmarks.post_id = posts.id)"

	res := r.db.WithContext(ctx).Exec(
		"UPDATE posts SET likes_count = "+likes+", bookmarks_count = "+bookmarks+
			" WHERE likes_count <> "+likes+" OR bookmarks_count <> "+bookmarks,
		map[string]interface{}{"like": string(models.ReactionLike)},
	)
	return res.RowsAffected, res.Error
}
