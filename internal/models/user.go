package models

import (
	"time"
)

// Theme preference values stored on the user row.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:120;not null" json:"email"`
	Password  string    `gorm:"size:256;not null" json:"-"` // bcrypt hash
	Avatar    string    `gorm:"size:255" json:"avatar"`     // uploaded avatar URL, optional
	Theme     string    `gorm:"size:10;default:'light'" json:"theme"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// No DeletedAt; accounts are never hard-deleted here.
}
