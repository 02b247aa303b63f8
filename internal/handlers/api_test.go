package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkwell/internal/db"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// A pooled :memory: connection would open a second, empty database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))
	db.DB = gdb
}

func createTestUser(t *testing.T, username string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("hunter22")
	require.NoError(t, err)
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
		Theme:    models.ThemeLight,
	}
	require.NoError(t, db.DB.Create(user).Error)
	return user
}

// newTestRouter registers the JSON surface the way cmd/server does,
// with the session user pre-set instead of loaded from a cookie.
func newTestRouter(user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.CheckUserKey, user)
		}
		c.Next()
	})

	authH := NewAuthHandler()
	postH := NewPostHandler()
	voteH := NewVoteHandler()
	commentH := NewCommentHandler()
	userH := NewUserHandler()

	r.GET("/api/posts", postH.ListPosts)
	r.GET("/api/check_username", authH.CheckUsername)
	r.GET("/api/check_email", authH.CheckEmail)
	r.GET("/api/user/theme", userH.Theme)
	r.POST("/post/:id/vote", voteH.Vote)
	r.POST("/post/comment", commentH.Create)
	r.POST("/post/:id/delete", postH.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestListPostsShape(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author")
	for i := 1; i <= services.PageSize+2; i++ {
		_, err := services.CreatePost(author, services.PostInput{
			Title:   fmt.Sprintf("post %d #misc", i),
			Content: "<p>body</p>",
		})
		require.NoError(t, err)
	}

	r := newTestRouter(nil)

	w, body := doJSON(t, r, http.MethodGet, "/api/posts?page=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["has_more"])
	items := body["items"].([]interface{})
	require.Len(t, items, services.PageSize)

	first := items[0].(map[string]interface{})
	assert.Equal(t, fmt.Sprintf("post %d #misc", services.PageSize+2), first["title"])
	assert.Equal(t, "author", first["author"])
	assert.Contains(t, first, "tags")
	assert.Contains(t, first, "upvotes")
	assert.Contains(t, first, "created_at")

	w, body = doJSON(t, r, http.MethodGet, "/api/posts?page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["has_more"])
	assert.Len(t, body["items"].([]interface{}), 2)

	// Empty pages still answer with an empty array, not null.
	w, body = doJSON(t, r, http.MethodGet, "/api/posts?page=9", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, body["items"])
	assert.Len(t, body["items"].([]interface{}), 0)
}

func TestAvailabilityProbes(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "taken")
	r := newTestRouter(nil)

	w, body := doJSON(t, r, http.MethodGet, "/api/check_username?username=taken", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, false, body["available"])

	_, body = doJSON(t, r, http.MethodGet, "/api/check_username?username=fresh_name", nil)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, true, body["available"])

	_, body = doJSON(t, r, http.MethodGet, "/api/check_username?username=a", nil)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, false, body["available"])

	_, body = doJSON(t, r, http.MethodGet, "/api/check_email?email=taken%40example.com", nil)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, false, body["available"])

	_, body = doJSON(t, r, http.MethodGet, "/api/check_email?email=not-an-email", nil)
	assert.Equal(t, false, body["valid"])
}

func TestVoteRequiresLogin(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author")
	post, err := services.CreatePost(author, services.PostInput{Title: "t", Content: "<p>x</p>"})
	require.NoError(t, err)

	r := newTestRouter(nil)
	w, body := doJSON(t, r, http.MethodPost, fmt.Sprintf("/post/%d/vote", post.ID),
		gin.H{"vote_type": "up"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, body, "error")
}

func TestVoteToggleThroughRouter(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author")
	voter := createTestUser(t, "voter")
	post, err := services.CreatePost(author, services.PostInput{Title: "t", Content: "<p>x</p>"})
	require.NoError(t, err)

	r := newTestRouter(voter)
	path := fmt.Sprintf("/post/%d/vote", post.ID)

	w, body := doJSON(t, r, http.MethodPost, path, gin.H{"vote_type": "up"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["upvotes"])
	assert.EqualValues(t, 0, body["downvotes"])

	// Same direction again toggles the vote off.
	w, body = doJSON(t, r, http.MethodPost, path, gin.H{"vote_type": "up"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["upvotes"])

	w, body = doJSON(t, r, http.MethodPost, path, gin.H{"vote_type": "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body, "error")

	w, _ = doJSON(t, r, http.MethodPost, "/post/9999/vote", gin.H{"vote_type": "up"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentCreateThroughRouter(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author")
	reader := createTestUser(t, "reader")
	post, err := services.CreatePost(author, services.PostInput{Title: "t", Content: "<p>x</p>"})
	require.NoError(t, err)

	r := newTestRouter(reader)

	w, body := doJSON(t, r, http.MethodPost, "/post/comment",
		gin.H{"post_id": post.ID, "content": "  nice write-up  "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nice write-up", body["content"])
	assert.Equal(t, "reader", body["author"])
	assert.NotZero(t, body["id"])

	w, _ = doJSON(t, r, http.MethodPost, "/post/comment",
		gin.H{"post_id": post.ID, "content": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	anon := newTestRouter(nil)
	w, _ = doJSON(t, anon, http.MethodPost, "/post/comment",
		gin.H{"post_id": post.ID, "content": "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeletePostThroughRouter(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author")
	other := createTestUser(t, "other")
	post, err := services.CreatePost(author, services.PostInput{Title: "t", Content: "<p>x</p>"})
	require.NoError(t, err)

	path := fmt.Sprintf("/post/%d/delete", post.ID)

	w, _ := doJSON(t, newTestRouter(nil), http.MethodPost, path, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, newTestRouter(other), http.MethodPost, path, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body := doJSON(t, newTestRouter(author), http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["deleted"])

	var count int64
	db.DB.Model(&models.Post{}).Count(&count)
	assert.Zero(t, count)
}

func TestThemeEndpoint(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "nightowl")
	user.Theme = models.ThemeDark
	require.NoError(t, db.DB.Save(user).Error)

	w, body := doJSON(t, newTestRouter(user), http.MethodGet, "/api/user/theme", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ThemeDark, body["theme"])

	w, _ = doJSON(t, newTestRouter(nil), http.MethodGet, "/api/user/theme", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func doForm(t *testing.T, r *gin.Engine, method, path, form string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestVoteAcceptsFormEncodedBody(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author")
	voter := createTestUser(t, "voter")
	post, err := services.CreatePost(author, services.PostInput{Title: "t", Content: "<p>x</p>"})
	require.NoError(t, err)

	r := newTestRouter(voter)
	path := fmt.Sprintf("/post/%d/vote", post.ID)

	w, body := doForm(t, r, http.MethodPost, path, "value=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["upvotes"])

	w, body = doForm(t, r, http.MethodPost, path, "value=-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["upvotes"])
	assert.EqualValues(t, 1, body["downvotes"])

	w, _ = doForm(t, r, http.MethodPost, path, "value=7")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPostsSearchFilter(t *testing.T) {
	setupTestDB(t)
	author := createTestUser(t, "author")
	_, err := services.CreatePost(author, services.PostInput{Title: "Gardening notes", Content: "<p>soil</p>"})
	require.NoError(t, err)
	_, err = services.CreatePost(author, services.PostInput{Title: "Trip report", Content: "<p>mountains</p>"})
	require.NoError(t, err)

	r := newTestRouter(nil)

	w, body := doJSON(t, r, http.MethodGet, "/api/posts?page=1&q=garden", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Gardening notes", items[0].(map[string]interface{})["title"])

	_, body = doJSON(t, r, http.MethodGet, "/api/posts?page=1&q=nothing-matches", nil)
	assert.Len(t, body["items"].([]interface{}), 0)
}
