package models

import (
	"time"

	"gorm.io/gorm"
)

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

type Post struct {
	ID              uint              `json:"id" gorm:"primarykey"`
	AuthorID        uint              `json:"author_id" gorm:"not null;index"`
	DefaultLanguage string            `json:"default_language" gorm:"size:10;not null"`
	CoverImage      string            `json:"cover_image"`
	Status          PostStatus        `json:"status" gorm:"size:20;not null;default:'draft';index"`
	LikesCount      int               `json:"likes_count" gorm:"not null;default:0"`
	BookmarksCount  int               `json:"bookmarks_count" gorm:"not null;default:0"`
	ViewsCount      int               `json:"views_count" gorm:"not null;default:0"`
	ReadingTime     int               `json:"reading_time" gorm:"not null;default:0"`
	Translations    []PostTranslation `json:"translations" gorm:"foreignKey:PostID"`
	Tags            []Tag             `json:"tags" gorm:"many2many:post_tags;"`
	PublishedAt     *time.Time        `json:"published_at" gorm:"index"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	DeletedAt       gorm.DeletedAt    `json:"deleted_at,omitempty" gorm:"index"`

	// Filled per request by the engagement aggregator, never stored.
	ReactionCounts     map[ReactionType]int `json:"reaction_counts" gorm:"-"`
	ViewerReactions    []ReactionType       `json:"viewer_reactions,omitempty" gorm:"-"`
	LikedByViewer      bool                 `json:"liked_by_viewer" gorm:"-"`
	BookmarkedByViewer bool                 `json:"bookmarked_by_viewer" gorm:"-"`
}

func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished && !p.DeletedAt.Valid
}

// Translation returns the translation for code, or nil.
func (p *Post) Translation(code string) *PostTranslation {
	for i := range p.Translations {
		if p.Translations[i].LanguageCode == code {
			return &p.Translations[i]
		}
	}
	return nil
}
