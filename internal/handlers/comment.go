package handlers

import (
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

type commentRequest struct {
	PostID  uint   `json:"post_id"`
	Content string `json:"content"`
}

// Create is POST /post/comment. Returns the created comment's transport
// record so the client can append it without re-fetching the thread.
func (h *CommentHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing post_id or content"})
		return
	}

	view, err := services.AddComment(user, req.PostID, req.Content)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
