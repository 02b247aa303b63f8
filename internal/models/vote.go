package models

import (
	"time"
)

// Vote values as stored in the ledger.
const (
	VoteUp   = 1
	VoteDown = -1
)

// Vote is the ledger row behind the denormalized counters on Post.
// The composite unique index is what guarantees at most one row per
// (user, post); concurrent double-submission loses on the insert and
// is resolved by re-reading.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_post_vote" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_user_post_vote;index" json:"post_id"`
	Value     int       `gorm:"not null" json:"value"` // VoteUp or VoteDown
	CreatedAt time.Time `json:"created_at"`
}
