package database

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sjperalta/registro-api/internal/audit"
	"github.com/sjperalta/registro-api/internal/models"
	pkgLogger "github.com/sjperalta/registro-api/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite://"

// Connect opens the database named by databaseURL. URLs starting with
// sqlite:// open a SQLite database (local development and tests); anything
// else is handed to the PostgreSQL driver.
func Connect(databaseURL string) (*gorm.DB, error) {
	// Configure GORM logger
	logLevel := logger.Silent
	if os.Getenv("ENVIRONMENT") == "development" {
		logLevel = logger.Info
	}

	gormLogger := pkgLogger.NewGormLogger(
		logLevel,
		200*time.Millisecond,
		pkgLogger.WithContextAttrs(func(ctx context.Context) []any {
			return []any{"actor", audit.IdentityFromContext(ctx)}
		}),
	)

	isSQLite := strings.HasPrefix(databaseURL, sqlitePrefix)
	var dialector gorm.Dialector
	if isSQLite {
		dialector = sqlite.Open(strings.TrimPrefix(databaseURL, sqlitePrefix))
	} else {
		dialector = postgres.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true, // Writes go through explicit transactions
		PrepareStmt:            !isSQLite,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	if isSQLite {
		// one connection keeps an in-memory database alive and serializes writers
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the tables for every persisted model
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Contract{},
		&models.NotificationOperation{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
