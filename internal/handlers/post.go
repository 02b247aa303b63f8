package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"inkwell/internal/db"
	"inkwell/internal/logger"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

// Index renders the first feed page; the client script pulls further
// pages from /api/posts. An optional ?q= filters the feed. Page 1
// render data (unfiltered) is cached briefly and invalidated on post
// create/delete.
func (h *PostHandler) Index(c *gin.Context) {
	page := utils.StringToInt(c.Query("page"))
	if page < 1 {
		page = 1
	}
	query := strings.TrimSpace(c.Query("q"))

	type feedPage struct {
		Items   []services.PostSummary
		HasMore bool
	}

	cacheKey := services.FeedCacheKey(page)
	if page == 1 && query == "" {
		if cached := utils.GetCache().Get(cacheKey); cached != nil {
			if fp, ok := cached.(feedPage); ok {
				h.renderFeed(c, page, query, fp.Items, fp.HasMore)
				return
			}
		}
	}

	items, hasMore, err := services.GetPage(page, services.PageSize, query)
	if err != nil {
		logger.Sugar.Errorw("feed page query failed", "page", page, "q", query, "err", err)
		RenderError(c, http.StatusInternalServerError, "Failed to load feed")
		return
	}

	if page == 1 && query == "" {
		utils.GetCache().Set(cacheKey, feedPage{items, hasMore}, time.Minute)
	}
	h.renderFeed(c, page, query, items, hasMore)
}

func (h *PostHandler) renderFeed(c *gin.Context, page int, query string, items []services.PostSummary, hasMore bool) {
	title := "Latest posts"
	if query != "" {
		title = "Search: " + query
	}
	Render(c, http.StatusOK, "feed/list.html", gin.H{
		"Title":   title,
		"Items":   items,
		"HasMore": hasMore,
		"Page":    page,
		"Query":   query,
	})
}

// ListPosts is GET /api/posts?page=N&q=, the "load more" feed.
func (h *PostHandler) ListPosts(c *gin.Context) {
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	items, hasMore, err := services.GetPage(page, services.PageSize, c.Query("q"))
	if err != nil {
		jsonError(c, err)
		return
	}
	if items == nil {
		items = []services.PostSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "has_more": hasMore})
}

// Detail renders a post with its comment thread.
func (h *PostHandler) Detail(c *gin.Context) {
	postID := uint(utils.StringToInt(c.Param("id")))
	post, err := services.GetPost(postID)
	if err != nil {
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	}

	var comments []models.Comment
	db.DB.Preload("User").Where("post_id = ?", post.ID).
		Order("created_at ASC, id ASC").Find(&comments)

	type renderedComment struct {
		models.Comment
		ContentHTML template.HTML
	}
	rendered := make([]renderedComment, len(comments))
	for i, com := range comments {
		rendered[i] = renderedComment{
			Comment:     com,
			ContentHTML: utils.RenderMarkdown(com.Content),
		}
	}

	isAuthor := false
	if user := middleware.CurrentUser(c); user != nil && user.ID == post.UserID {
		isAuthor = true
	}

	Render(c, http.StatusOK, "post/detail.html", gin.H{
		"Title":       post.Title,
		"Post":        post,
		"PostContent": utils.EnhanceHTMLContent(post.Content),
		"Comments":    rendered,
		"IsAuthor":    isAuthor,
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "post/form.html", gin.H{"Title": "New post", "Mode": "new"})
}

func (h *PostHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	in := services.PostInput{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
		Tags:    c.PostForm("tags"),
	}
	if file, err := c.FormFile("image"); err == nil && file != nil {
		url, err := services.SaveImage(file, "posts")
		if err != nil {
			Render(c, http.StatusBadRequest, "post/form.html", gin.H{
				"Title": "New post", "Mode": "new", "Error": err.Error(), "Form": in,
			})
			return
		}
		in.ImagePath = url
	}

	post, err := services.CreatePost(user, in)
	if err != nil {
		status := http.StatusInternalServerError
		msg := "Failed to create post"
		if ve, ok := services.IsValidation(err); ok {
			status = http.StatusBadRequest
			msg = ve.Message
		}
		Render(c, status, "post/form.html", gin.H{
			"Title": "New post", "Mode": "new", "Error": msg, "Form": in,
		})
		return
	}

	utils.GetCache().Delete(services.FeedCacheKey(1))
	c.Redirect(http.StatusFound, postPath(post.ID))
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	postID := uint(utils.StringToInt(c.Param("id")))

	post, err := services.GetPost(postID)
	if err != nil {
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	}
	if post.UserID != user.ID {
		RenderError(c, http.StatusForbidden, "You cannot edit this post")
		return
	}

	tags := make([]string, len(post.Tags))
	for i, t := range post.Tags {
		tags[i] = t.Name
	}
	Render(c, http.StatusOK, "post/form.html", gin.H{
		"Title": "Edit post",
		"Mode":  "edit",
		"Post":  post,
		"Tags":  tags,
	})
}

func (h *PostHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	postID := uint(utils.StringToInt(c.Param("id")))

	in := services.PostInput{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
		Tags:    c.PostForm("tags"),
	}
	if file, err := c.FormFile("image"); err == nil && file != nil {
		if url, err := services.SaveImage(file, "posts"); err == nil {
			in.ImagePath = url
		}
	}

	post, err := services.UpdatePost(user, postID, in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			RenderError(c, http.StatusForbidden, "You cannot edit this post")
		case errors.Is(err, services.ErrNotFound):
			RenderError(c, http.StatusNotFound, "Post not found")
		default:
			status := http.StatusInternalServerError
			msg := "Failed to save post"
			if ve, ok := services.IsValidation(err); ok {
				status = http.StatusBadRequest
				msg = ve.Message
			}
			Render(c, status, "post/form.html", gin.H{
				"Title": "Edit post", "Mode": "edit", "Error": msg, "Form": in,
			})
		}
		return
	}

	utils.GetCache().Delete(services.FeedCacheKey(1))
	c.Redirect(http.StatusFound, postPath(post.ID))
}

// Delete is POST /post/:id/delete, author-only, called from the client
// script. Responds 200 on success, 403 for non-authors.
func (h *PostHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	postID := uint(utils.StringToInt(c.Param("id")))

	if err := services.DeletePost(user, postID); err != nil {
		jsonError(c, err)
		return
	}
	utils.GetCache().Delete(services.FeedCacheKey(1))
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListByTag renders all posts carrying a tag.
func (h *PostHandler) ListByTag(c *gin.Context) {
	name := services.NormalizeTagName(c.Param("name"))

	var tag models.Tag
	if err := db.DB.Where("name = ?", name).First(&tag).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Tag not found")
		return
	}

	var posts []models.Post
	db.DB.Preload("User").
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Where("post_tags.tag_id = ?", tag.ID).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(50).
		Find(&posts)
	services.FillTags(posts)
	services.FillCommentCounts(posts)

	Render(c, http.StatusOK, "tag/list.html", gin.H{
		"Title": "#" + tag.Name,
		"Tag":   tag,
		"Posts": posts,
	})
}

func postPath(id uint) string {
	return "/post/" + utils.IntToString(int(id))
}
