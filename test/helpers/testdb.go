package helpers

import (
	"fmt"
	"testing"
	"time"

	"natours_backend/database"
	"natours_backend/internal/auth"
	"natours_backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB - отдельная in-memory SQLite на тест со схемой из моделей
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Не удалось открыть тестовую БД")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Одно соединение: in-memory база живет, пока оно открыто
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db), "AutoMigrate для тестовой БД")
	return db
}

// CreateUser создает пользователя с захешированным паролем (bcrypt.MinCost)
func CreateUser(t *testing.T, db *gorm.DB, name, email, password string, role models.UserRole) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	require.NoError(t, db.Create(user).Error, "Не удалось создать пользователя %s", email)
	return user
}

// CreateTour создает видимый тур с разумными значениями по умолчанию
func CreateTour(t *testing.T, db *gorm.DB, name string, mutate ...func(*models.Tour)) *models.Tour {
	t.Helper()

	tour := &models.Tour{
		Name:           name,
		Slug:           models.Slugify(name),
		Duration:       5,
		MaxGroupSize:   10,
		Difficulty:     models.DifficultyEasy,
		Price:          497,
		Summary:        "Breathtaking hike through the Canadian Banff National Park",
		ImageCover:     "tour-1-cover.jpg",
		RatingsAverage: models.DefaultRatingsAverage,
	}
	for _, m := range mutate {
		m(tour)
	}
	require.NoError(t, db.Create(tour).Error, "Не удалось создать тур %s", name)
	return tour
}

// CreateReview вставляет отзыв напрямую, без пересчета рейтинга
func CreateReview(t *testing.T, db *gorm.DB, tourID, userID string, rating int) *models.Review {
	t.Helper()

	review := &models.Review{
		Review: "Review text",
		Rating: rating,
		TourID: tourID,
		UserID: userID,
	}
	require.NoError(t, db.Omit("User", "Tour").Create(review).Error)
	return review
}

// ReloadTour перечитывает тур без фильтров видимости
func ReloadTour(t *testing.T, db *gorm.DB, id string) *models.Tour {
	t.Helper()

	var tour models.Tour
	require.NoError(t, db.Where("id = ?", id).First(&tour).Error)
	return &tour
}

// ReloadUser перечитывает пользователя
func ReloadUser(t *testing.T, db *gorm.DB, id string) *models.User {
	t.Helper()

	var user models.User
	require.NoError(t, db.Where("id = ?", id).First(&user).Error)
	return &user
}

// UniqueEmail - email, не повторяющийся между тестами
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}
