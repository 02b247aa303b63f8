package services

import (
	"fmt"
	"strings"
	"time"

	"inkwell/internal/db"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PageSize is the fixed feed page size.
const PageSize = 10

// PostSummary is the transport representation of a feed entry, shared by
// the JSON API and the server-rendered cards.
type PostSummary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	Author    string    `json:"author"`
	AuthorID  uint      `json:"author_id"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
}

// FeedCacheKey names the cached render data for a feed page.
func FeedCacheKey(page int) string {
	return fmt.Sprintf("feed:page:%d", page)
}

// GetPage returns one feed page, newest first with id as the tiebreaker
// so the order is stable within a request even when timestamps collide.
// A non-empty query narrows the page to posts whose title, content,
// author username or tag name contains it (case-insensitive). A page
// past the end comes back empty with hasMore false; that is the
// "no more content" signal, not an error.
func GetPage(page, size int, query string) ([]PostSummary, bool, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = PageSize
	}

	tx := db.DB.Preload("User")
	if q := strings.TrimSpace(query); q != "" {
		tx = searchScope(tx, q)
	}

	var posts []models.Post
	err := tx.Order("posts.created_at DESC, posts.id DESC").
		Limit(size + 1). // one extra row answers has_more without a count
		Offset((page - 1) * size).
		Find(&posts).Error
	if err != nil {
		return nil, false, err
	}

	hasMore := len(posts) > size
	if hasMore {
		posts = posts[:size]
	}
	FillTags(posts)

	items := make([]PostSummary, len(posts))
	for i, p := range posts {
		items[i] = Summarize(&p)
	}
	return items, hasMore, nil
}

// searchScope filters posts on title, content, author username or tag
// name. Grouping by the post id collapses the fan-out when a post
// matches through more than one tag.
func searchScope(tx *gorm.DB, q string) *gorm.DB {
	like := "%" + strings.ToLower(q) + "%"
	return tx.Select("posts.*").
		Joins("JOIN users ON users.id = posts.user_id").
		Joins("LEFT JOIN post_tags ON post_tags.post_id = posts.id").
		Joins("LEFT JOIN tags ON tags.id = post_tags.tag_id").
		Where("LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ? OR LOWER(users.username) LIKE ? OR LOWER(tags.name) LIKE ?",
			like, like, like, like).
		Group("posts.id")
}

// Summarize flattens a loaded post into its transport form.
func Summarize(p *models.Post) PostSummary {
	tags := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		tags[i] = t.Name
	}
	return PostSummary{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		ImageURL:  p.ImagePath,
		Author:    p.User.Username,
		AuthorID:  p.UserID,
		Tags:      tags,
		CreatedAt: p.CreatedAt,
		Upvotes:   p.Upvotes,
		Downvotes: p.Downvotes,
	}
}

// FillTags batch-loads each post's tags ordered by join-row position,
// which preserves the order the tags were written in.
func FillTags(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type tagRow struct {
		PostID uint
		TagID  uint
		Name   string
	}
	var rows []tagRow
	db.DB.Table("post_tags").
		Select("post_tags.post_id, tags.id AS tag_id, tags.name").
		Joins("JOIN tags ON tags.id = post_tags.tag_id").
		Where("post_tags.post_id IN ?", postIDs).
		Order("post_tags.post_id, post_tags.position").
		Scan(&rows)

	byPost := make(map[uint][]models.Tag, len(posts))
	for _, r := range rows {
		byPost[r.PostID] = append(byPost[r.PostID], models.Tag{ID: r.TagID, Name: r.Name})
	}
	for i := range posts {
		posts[i].Tags = byPost[posts[i].ID]
	}
}

// FillCommentCounts batch-fills CommentCount for a slice of posts.
func FillCommentCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	db.DB.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results)

	countMap := make(map[uint]int, len(results))
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}
	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
}
