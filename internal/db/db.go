package db

import (
	"os"
	"strings"

	"inkwell/internal/logger"
	"inkwell/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Local dev falls back to an on-disk SQLite file.
		dsn = "inkwell.db"
	}

	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "host=") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		logger.Sugar.Fatalf("failed to connect to database: %v", err)
	}
	logger.Sugar.Infow("database connection established", "dialect", DB.Dialector.Name())

	if err := Migrate(DB); err != nil {
		logger.Sugar.Fatalf("failed to migrate database: %v", err)
	}
	logger.Sugar.Info("database migration completed")
}

// Migrate creates/updates the schema. Split out so tests can run it
// against their own in-memory database.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.SetupJoinTable(&models.Post{}, "Tags", &models.PostTag{}); err != nil {
		return err
	}
	return gdb.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Tag{},
		&models.Comment{},
		&models.Vote{},
	)
}
