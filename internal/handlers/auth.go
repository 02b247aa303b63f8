package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"inkwell/internal/db"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

var (
	usernameRE = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	emailRE    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", gin.H{"Title": "Sign up"})
}

// Register validates the signup form and logs the new user in. Field
// errors render inline; the client script also probes the availability
// endpoints while typing.
func (h *AuthHandler) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.ToLower(strings.TrimSpace(c.PostForm("email")))
	password := c.PostForm("password")

	fieldErrors := gin.H{}
	if !usernameRE.MatchString(username) {
		fieldErrors["username"] = "3-20 chars, letters/numbers/underscore"
	}
	if !emailRE.MatchString(email) {
		fieldErrors["email"] = "Invalid email"
	}
	if len(password) < 6 {
		fieldErrors["password"] = "At least 6 characters"
	}
	if _, ok := fieldErrors["username"]; !ok {
		var count int64
		db.DB.Model(&models.User{}).Where("username = ?", username).Count(&count)
		if count > 0 {
			fieldErrors["username"] = "Username already taken"
		}
	}
	if _, ok := fieldErrors["email"]; !ok {
		var count int64
		db.DB.Model(&models.User{}).Where("email = ?", email).Count(&count)
		if count > 0 {
			fieldErrors["email"] = "Email already registered"
		}
	}
	if len(fieldErrors) > 0 {
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{
			"Title":       "Sign up",
			"FieldErrors": fieldErrors,
			"Username":    username,
			"Email":       email,
		})
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Registration failed")
		return
	}
	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Theme:    models.ThemeLight,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		// Unique index race on username/email.
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{
			"Title": "Sign up",
			"Error": "Username or email already registered",
		})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Title": "Log in"})
}

// Login accepts a username or an email in the same field.
func (h *AuthHandler) Login(c *gin.Context) {
	identity := strings.TrimSpace(c.PostForm("username_or_email"))
	password := c.PostForm("password")

	var user models.User
	err := db.DB.Where("username = ? OR email = ?", identity, strings.ToLower(identity)).
		First(&user).Error
	if err != nil || !utils.CheckPasswordHash(password, user.Password) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{
			"Title": "Log in",
			"Error": "Invalid credentials",
		})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

// CheckUsername answers the signup form's inline validation probe.
func (h *AuthHandler) CheckUsername(c *gin.Context) {
	username := strings.TrimSpace(c.Query("username"))
	valid := usernameRE.MatchString(username)
	available := false
	if valid {
		var count int64
		db.DB.Model(&models.User{}).Where("username = ?", username).Count(&count)
		available = count == 0
	}
	c.JSON(http.StatusOK, gin.H{"valid": valid, "available": available})
}

// CheckEmail mirrors CheckUsername for the email field.
func (h *AuthHandler) CheckEmail(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	valid := emailRE.MatchString(email)
	available := false
	if valid {
		var count int64
		db.DB.Model(&models.User{}).Where("email = ?", email).Count(&count)
		available = count == 0
	}
	c.JSON(http.StatusOK, gin.H{"valid": valid, "available": available})
}
