package models

// Tag names are normalized (lower-cased, punctuation-stripped) before they
// reach the database, so the unique index is effectively case-insensitive.
// Tags are created lazily and never deleted; orphans are fine.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:64;not null" json:"name"`
}
