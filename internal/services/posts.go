package services

import (
	"errors"
	"strings"

	"inkwell/internal/db"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"gorm.io/gorm"
)

// PostInput is the post create/edit form payload.
type PostInput struct {
	Title     string
	Content   string // raw rich-editor HTML, sanitized here
	Tags      string // manual comma-separated tags, may be empty
	ImagePath string // already-stored image URL, may be empty
}

func (in *PostInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if in.Title == "" {
		return Validationf("title", "title is required")
	}
	if in.Content == "" {
		return Validationf("content", "content is required")
	}
	return nil
}

// CreatePost stores a sanitized post and its tag associations in one
// transaction.
func CreatePost(user *models.User, in PostInput) (*models.Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	post := models.Post{
		UserID:    user.ID,
		Title:     in.Title,
		Content:   utils.SanitizeHTML(in.Content),
		ImagePath: in.ImagePath,
	}
	names := CollectTags(post.Title, post.Content, in.Tags)

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return SyncPostTags(tx, &post, names)
	})
	if err != nil {
		return nil, err
	}
	post.User = *user
	return &post, nil
}

// UpdatePost rewrites an existing post (author only) and resyncs its tag
// set from the new content.
func UpdatePost(user *models.User, postID uint, in PostInput) (*models.Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	post, err := GetPost(postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != user.ID {
		return nil, ErrForbidden
	}

	post.Title = in.Title
	post.Content = utils.SanitizeHTML(in.Content)
	if in.ImagePath != "" {
		post.ImagePath = in.ImagePath
	}
	names := CollectTags(post.Title, post.Content, in.Tags)

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "User").Save(post).Error; err != nil {
			return err
		}
		return SyncPostTags(tx, post, names)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post (author only) together with its comments,
// votes and tag associations. Deletes are explicit so the cascade does
// not depend on foreign-key enforcement of the underlying store.
func DeletePost(user *models.User, postID uint) error {
	post, err := GetPost(postID)
	if err != nil {
		return err
	}
	if post.UserID != user.ID {
		return ErrForbidden
	}

	return db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
}

// GetPost loads a post with its author and its tags in written order.
func GetPost(postID uint) (*models.Post, error) {
	var post models.Post
	err := db.DB.Preload("User").First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	loaded := []models.Post{post}
	FillTags(loaded)
	return &loaded[0], nil
}
