package models

import "time"

type ReactionType string

const (
	ReactionLike          ReactionType = "like"
	ReactionUnicorn       ReactionType = "unicorn"
	ReactionExplodingHead ReactionType = "exploding_head"
	ReactionRaisedHands   ReactionType = "raised_hands"
	ReactionFire          ReactionType = "fire"
)

var ReactionTypes = []ReactionType{
	ReactionLike,
	ReactionUnicorn,
	ReactionExplodingHead,
	ReactionRaisedHands,
	ReactionFire,
}

func (t ReactionType) Valid() bool {
	for _, known := range ReactionTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Reaction struct {
	ID        uint         `json:"id" gorm:"primarykey"`
	PostID    uint         `json:"post_id" gorm:"not null;uniqueIndex:idx_reaction_post_user_type"`
	UserID    uint         `json:"user_id" gorm:"not null;uniqueIndex:idx_reaction_post_user_type;index"`
	Type      ReactionType `json:"type" gorm:"column:reaction_type;size:32;not null;uniqueIndex:idx_reaction_post_user_type"`
	CreatedAt time.Time    `json:"created_at"`
}

// ReactionCount is one row of a grouped count query.
type ReactionCount struct {
	PostID uint
	Type   ReactionType `gorm:"column:reaction_type"`
	Count  int
}
