package models

import "time"

type PostTranslation struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	PostID       uint      `json:"post_id" gorm:"not null;uniqueIndex:idx_translation_post_lang"`
	LanguageCode string    `json:"language_code" gorm:"size:10;not null;uniqueIndex:idx_translation_post_lang;uniqueIndex:idx_translation_lang_slug"`
	Title        string    `json:"title"`
	Body         string    `json:"body" gorm:"type:text"`
	Slug         *string   `json:"slug" gorm:"size:255;uniqueIndex:idx_translation_lang_slug"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
