package repositories

import (
	"errors"
	"time"

	"natours_backend/internal/models"
	"natours_backend/internal/query"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email already exists")
)

// UserQuerySchema - поля пользователя, доступные в ?sort / ?fields
var UserQuerySchema = query.Schema{
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"photo":     "photo",
	"createdAt": "created_at",
}

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	// FindByID находит пользователя независимо от active
	FindByID(db *gorm.DB, id string) (*models.User, error)
	// FindActiveByEmail - только активные, как и все поиски по email
	FindActiveByEmail(db *gorm.DB, email string) (*models.User, error)
	FindByResetTokenHash(db *gorm.DB, hash string) (*models.User, error)
	EmailTaken(db *gorm.DB, email, exceptID string) (bool, error)
	FindAll(db *gorm.DB, q *query.Query) ([]models.User, error)
	FindByIDs(db *gorm.DB, ids []string) ([]models.User, error)

	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	// SetPassword пишет хеш, время смены и очищает поля сброса
	SetPassword(db *gorm.DB, id, hash string, changedAt time.Time) error
	SetResetToken(db *gorm.DB, id string, hash *string, expires *time.Time) error
	// ClearExpiredResetTokens стирает токены сброса, истекшие до now
	ClearExpiredResetTokens(db *gorm.DB, now time.Time) (int64, error)
	Deactivate(db *gorm.DB, id string) error
	Delete(db *gorm.DB, id string) error
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindActiveByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.Where("email = ? AND active = ?", email, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByResetTokenHash(db *gorm.DB, hash string) (*models.User, error) {
	var user models.User
	err := db.Where("password_reset_token = ? AND active = ?", hash, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// EmailTaken учитывает и неактивных: уникальный индекс на них тоже действует
func (r *UserRepositoryImpl) EmailTaken(db *gorm.DB, email, exceptID string) (bool, error) {
	var count int64
	tx := db.Model(&models.User{}).Where("email = ?", email)
	if exceptID != "" {
		tx = tx.Where("id <> ?", exceptID)
	}
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepositoryImpl) FindAll(db *gorm.DB, q *query.Query) ([]models.User, error) {
	var users []models.User
	err := q.Apply(db.Model(&models.User{}).Where("active = ?", true), "created_at").
		Find(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) FindByIDs(db *gorm.DB, ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	err := db.Where("id IN ? AND active = ?", ids, true).Find(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) SetPassword(db *gorm.DB, id, hash string, changedAt time.Time) error {
	return r.UpdateFields(db, id, map[string]interface{}{
		"password_hash":          hash,
		"password_changed_at":    changedAt,
		"password_reset_token":   nil,
		"password_reset_expires": nil,
	})
}

// SetResetToken: nil в обоих аргументах стирает токен
func (r *UserRepositoryImpl) SetResetToken(db *gorm.DB, id string, hash *string, expires *time.Time) error {
	var token, expiresAt interface{}
	if hash != nil {
		token = *hash
	}
	if expires != nil {
		expiresAt = *expires
	}
	return r.UpdateFields(db, id, map[string]interface{}{
		"password_reset_token":   token,
		"password_reset_expires": expiresAt,
	})
}

func (r *UserRepositoryImpl) ClearExpiredResetTokens(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&models.User{}).
		Where("password_reset_expires IS NOT NULL AND password_reset_expires < ?", now).
		Updates(map[string]interface{}{
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *UserRepositoryImpl) Deactivate(db *gorm.DB, id string) error {
	return r.UpdateFields(db, id, map[string]interface{}{"active": false})
}

// Delete удаляет пользователя и его назначения гидом. Отзывы удаляет сервис,
// чтобы пересчитать рейтинги туров
func (r *UserRepositoryImpl) Delete(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM tour_guides WHERE user_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}
