package models

import "time"

type Bookmark struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_bookmark_user_post"`
	PostID    uint      `json:"post_id" gorm:"not null;uniqueIndex:idx_bookmark_user_post;index"`
	CreatedAt time.Time `json:"created_at"`
}

type Follow struct {
	FollowerID uint      `json:"follower_id" gorm:"primaryKey;autoIncrement:false"`
	FolloweeID uint      `json:"followee_id" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToggleResult reports the state after a toggle.
type ToggleResult struct {
	Active bool `json:"active"`
}
