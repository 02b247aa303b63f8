package middleware

import (
	"net/http"

	"inkwell/internal/db"
	"inkwell/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// LoadUser resolves the session user (if any) and sets it on the context.
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID := session.Get("user_id"); userID != nil {
			var user models.User
			if err := db.DB.First(&user, userID).Error; err == nil {
				c.Set(CheckUserKey, &user)
			}
		}
		c.Next()
	}
}

// AuthRequired gates HTML pages; anonymous visitors are sent to login.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the loaded session user, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if user, exists := c.Get(CheckUserKey); exists {
		return user.(*models.User)
	}
	return nil
}
