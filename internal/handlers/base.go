package handlers

import (
	"errors"
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

// Render injects common variables (current user, current path) before
// rendering a view.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path
	c.HTML(code, name, obj)
}

// RenderError shows the error page.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

// jsonError maps a service error to a JSON response with the matching
// status: ValidationError -> 400, ErrNotFound -> 404, ErrForbidden -> 403,
// anything else -> 500 with a generic message.
func jsonError(c *gin.Context, err error) {
	if ve, ok := services.IsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
		return
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
