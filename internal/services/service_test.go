package services

import (
	"testing"

	"inkwell/internal/db"
	"inkwell/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB points the package at a fresh in-memory database. One open
// connection max, so every query sees the same :memory: store.
func setupTestDB(t *testing.T) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))
	db.DB = gdb
}

func dbConn() *gorm.DB {
	return db.DB
}

func createTestUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
	}
	require.NoError(t, db.DB.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, user *models.User, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:  user.ID,
		Title:   title,
		Content: "<p>" + title + "</p>",
	}
	require.NoError(t, db.DB.Create(post).Error)
	return post
}
