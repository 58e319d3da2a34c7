package repositories

import (
	"errors"

	"natours_backend/internal/models"
	"natours_backend/internal/query"

	"gorm.io/gorm"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("review already exists for this tour")
)

var ReviewQuerySchema = query.Schema{
	"rating":    "rating",
	"review":    "review",
	"tourId":    "tour_id",
	"userId":    "user_id",
	"createdAt": "created_at",
}

// RatingStats - сырые данные для пересчета. Average == nil, если отзывов нет
type RatingStats struct {
	Quantity int64
	Average  *float64
}

type ReviewRepository interface {
	Create(db *gorm.DB, review *models.Review) error
	FindByID(db *gorm.DB, id string) (*models.Review, error)
	// FindRef возвращает только id, tour_id, user_id - для захвата тура до мутации
	FindRef(db *gorm.DB, id string) (*models.Review, error)
	FindAll(db *gorm.DB, tourID string, q *query.Query) ([]models.Review, error)
	ExistsForTourAndUser(db *gorm.DB, tourID, userID string) (bool, error)
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	Delete(db *gorm.DB, id string) error

	TourIDsByUser(db *gorm.DB, userID string) ([]string, error)
	DeleteByUser(db *gorm.DB, userID string) error

	RatingStats(db *gorm.DB, tourID string) (*RatingStats, error)
}

type ReviewRepositoryImpl struct{}

func NewReviewRepository() ReviewRepository {
	return &ReviewRepositoryImpl{}
}

func withAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "photo")
	})
}

func (r *ReviewRepositoryImpl) Create(db *gorm.DB, review *models.Review) error {
	if err := db.Omit("User", "Tour").Create(review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrReviewAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ReviewRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Review, error) {
	var review models.Review
	if err := withAuthor(db).Where("id = ?", id).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) FindRef(db *gorm.DB, id string) (*models.Review, error) {
	var review models.Review
	err := db.Model(&models.Review{}).Select("id", "tour_id", "user_id").
		Where("id = ?", id).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) FindAll(db *gorm.DB, tourID string, q *query.Query) ([]models.Review, error) {
	var reviews []models.Review
	tx := withAuthor(db.Model(&models.Review{}))
	if tourID != "" {
		tx = tx.Where("tour_id = ?", tourID)
	}
	err := q.Apply(tx, "created_at DESC").Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepositoryImpl) ExistsForTourAndUser(db *gorm.DB, tourID, userID string) (bool, error) {
	var count int64
	err := db.Model(&models.Review{}).
		Where("tour_id = ? AND user_id = ?", tourID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *ReviewRepositoryImpl) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.Review{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Review{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepositoryImpl) TourIDsByUser(db *gorm.DB, userID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.Review{}).Where("user_id = ?", userID).
		Distinct().Pluck("tour_id", &ids).Error
	return ids, err
}

func (r *ReviewRepositoryImpl) DeleteByUser(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.Review{}).Error
}

func (r *ReviewRepositoryImpl) RatingStats(db *gorm.DB, tourID string) (*RatingStats, error) {
	var stats RatingStats
	err := db.Model(&models.Review{}).
		Select("COUNT(*) AS quantity, AVG(rating) AS average").
		Where("tour_id = ?", tourID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
