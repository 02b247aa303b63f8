package handlers

import (
	"net/http"

	"inkwell/internal/db"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Profile shows a user's 20 newest posts.
func (h *UserHandler) Profile(c *gin.Context) {
	userID := uint(utils.StringToInt(c.Param("id")))

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "User not found")
		return
	}

	var posts []models.Post
	db.DB.Preload("User").
		Where("user_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Limit(20).
		Find(&posts)
	services.FillTags(posts)
	services.FillCommentCounts(posts)

	Render(c, http.StatusOK, "user/profile.html", gin.H{
		"Title":   user.Username,
		"Profile": user,
		"Posts":   posts,
	})
}

func (h *UserHandler) ShowSettings(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	Render(c, http.StatusOK, "user/settings.html", gin.H{
		"Title": "Settings",
		"User":  user,
	})
}

// UpdateSettings persists the theme preference and an optional avatar.
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	updates := make(map[string]interface{})

	theme := c.PostForm("theme")
	if theme != "" {
		if theme != models.ThemeLight && theme != models.ThemeDark {
			Render(c, http.StatusBadRequest, "user/settings.html", gin.H{
				"Title": "Settings", "User": user, "Error": "Unknown theme",
			})
			return
		}
		updates["theme"] = theme
	}

	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		url, err := services.SaveImage(file, "avatars")
		if err != nil {
			Render(c, http.StatusBadRequest, "user/settings.html", gin.H{
				"Title": "Settings", "User": user, "Error": err.Error(),
			})
			return
		}
		updates["avatar"] = url
	}

	if len(updates) > 0 {
		if err := db.DB.Model(user).Updates(updates).Error; err != nil {
			Render(c, http.StatusInternalServerError, "user/settings.html", gin.H{
				"Title": "Settings", "User": user, "Error": "Update failed",
			})
			return
		}
	}
	c.Redirect(http.StatusFound, "/settings")
}

// Theme is GET /api/user/theme; the client mirrors the answer into
// localStorage, making the server column the source of truth.
func (h *UserHandler) Theme(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": user.Theme})
}
