package models

import "time"

type Tag struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"size:100;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostTag is the join row between posts and tags.
type PostTag struct {
	PostID    uint      `json:"post_id" gorm:"primaryKey;autoIncrement:false"`
	TagID     uint      `json:"tag_id" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (PostTag) TableName() string {
	return "post_tags"
}
