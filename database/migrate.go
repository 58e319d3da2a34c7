package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"natours_backend/internal/logger"
	"natours_backend/internal/models"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

func setupGoose() error {
	goose.SetBaseFS(migrationsFS)
	return goose.SetDialect("postgres")
}

// Migrate применяет все SQL-миграции (goose) к PostgreSQL
func Migrate(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return fmt.Errorf("goose setup: %w", err)
	}
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	logger.Info("Migrations applied")
	return nil
}

// Rollback откатывает последнюю миграцию
func Rollback(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return fmt.Errorf("goose setup: %w", err)
	}
	return goose.DownContext(ctx, db, migrationsDir)
}

// Status печатает состояние миграций
func Status(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return fmt.Errorf("goose setup: %w", err)
	}
	return goose.StatusContext(ctx, db, migrationsDir)
}

// AutoMigrate - схема из моделей gorm, используется с SQLite в тестах
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Tour{},
		&models.Review{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
