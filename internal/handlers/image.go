package handlers

import (
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

type ImageHandler struct{}

func NewImageHandler() *ImageHandler {
	return &ImageHandler{}
}

// Upload is POST /upload/image, used by the rich editor to insert
// inline images.
func (h *ImageHandler) Upload(c *gin.Context) {
	if middleware.CurrentUser(c) == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil || file == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no image provided"})
		return
	}

	url, err := services.SaveImage(file, "posts")
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
