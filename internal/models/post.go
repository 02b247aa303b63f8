package models

import (
	"time"
)

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"` // sanitized HTML from the rich editor
	ImagePath string    `gorm:"size:255" json:"image_path"`        // optional featured image
	Upvotes   int       `gorm:"default:0" json:"upvotes"`          // denormalized, kept in step with the vote ledger
	Downvotes int       `gorm:"default:0" json:"downvotes"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tags []Tag `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE;" json:"tags"`

	// Filled by queries, not a column.
	CommentCount int `gorm:"-" json:"comment_count"`
}
