package services

import (
	"errors"
	"strings"
	"time"

	"inkwell/internal/db"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// CommentView is what the client appends to the thread without
// re-fetching it.
type CommentView struct {
	ID        uint      `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// AddComment appends an attributed comment to a post. Content must be
// non-empty after trimming; nothing is persisted otherwise.
func AddComment(user *models.User, postID uint, content string) (*CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, Validationf("content", "comment cannot be empty")
	}

	var post models.Post
	if err := db.DB.Select("id").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	comment := models.Comment{
		PostID:  post.ID,
		UserID:  user.ID,
		Content: content,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		return nil, err
	}

	return &CommentView{
		ID:        comment.ID,
		Author:    user.Username,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}, nil
}
