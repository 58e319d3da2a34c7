package repositories

import (
	"errors"

	"natours_backend/internal/models"
	"natours_backend/internal/query"

	"gorm.io/gorm"
)

var (
	ErrTourNotFound      = errors.New("tour not found")
	ErrTourAlreadyExists = errors.New("tour with this name already exists")
)

// TourQuerySchema - фильтруемые/сортируемые поля тура
var TourQuerySchema = query.Schema{
	"name":            "name",
	"slug":            "slug",
	"duration":        "duration",
	"maxGroupSize":    "max_group_size",
	"difficulty":      "difficulty",
	"price":           "price",
	"priceDiscount":   "price_discount",
	"ratingsAverage":  "ratings_average",
	"ratingsQuantity": "ratings_quantity",
	"summary":         "summary",
	"description":     "description",
	"imageCover":      "image_cover",
	"images":          "images",
	"startDates":      "start_dates",
	"startLocation":   "start_location",
	"locations":       "locations",
	"createdAt":       "created_at",
}

// TourStats - строка агрегата tour-stats
type TourStats struct {
	Difficulty string  `json:"difficulty"`
	NumTours   int64   `json:"numTours"`
	NumRatings int64   `json:"numRatings"`
	AvgRating  float64 `json:"avgRating"`
	AvgPrice   float64 `json:"avgPrice"`
	MinPrice   float64 `json:"minPrice"`
	MaxPrice   float64 `json:"maxPrice"`
}

type TourRepository interface {
	Create(db *gorm.DB, tour *models.Tour) error
	// FindByID не находит секретные туры
	FindByID(db *gorm.DB, id string, withRelations bool) (*models.Tour, error)
	FindAll(db *gorm.DB, q *query.Query) ([]models.Tour, error)
	FindAllVisible(db *gorm.DB) ([]models.Tour, error)
	Exists(db *gorm.DB, id string) (bool, error)
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	ReplaceGuides(db *gorm.DB, tour *models.Tour, guides []models.User) error
	// UpdateRatings - единственная запись производных полей рейтинга
	UpdateRatings(db *gorm.DB, id string, average float64, quantity int64) error
	Delete(db *gorm.DB, id string) error
	Stats(db *gorm.DB, minRating float64) ([]TourStats, error)
}

type TourRepositoryImpl struct{}

func NewTourRepository() TourRepository {
	return &TourRepositoryImpl{}
}

// visible - аналог pre(/^find/) фильтра секретных туров
func visible(db *gorm.DB) *gorm.DB {
	return db.Where("secret_tour = ?", false)
}

func (r *TourRepositoryImpl) Create(db *gorm.DB, tour *models.Tour) error {
	if err := db.Omit("Guides.*").Create(tour).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrTourAlreadyExists
		}
		return err
	}
	return nil
}

func (r *TourRepositoryImpl) FindByID(db *gorm.DB, id string, withRelations bool) (*models.Tour, error) {
	var tour models.Tour
	tx := visible(db.Model(&models.Tour{}))
	if withRelations {
		tx = tx.Preload("Guides", "active = ?", true).
			Preload("Reviews", func(db *gorm.DB) *gorm.DB {
				return db.Order("created_at DESC")
			}).
			Preload("Reviews.User")
	}
	if err := tx.Where("id = ?", id).First(&tour).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, err
	}
	return &tour, nil
}

func (r *TourRepositoryImpl) FindAll(db *gorm.DB, q *query.Query) ([]models.Tour, error) {
	var tours []models.Tour
	err := q.Apply(visible(db.Model(&models.Tour{})), "created_at DESC").Find(&tours).Error
	return tours, err
}

func (r *TourRepositoryImpl) FindAllVisible(db *gorm.DB) ([]models.Tour, error) {
	var tours []models.Tour
	err := visible(db.Model(&models.Tour{})).Order("created_at").Find(&tours).Error
	return tours, err
}

func (r *TourRepositoryImpl) Exists(db *gorm.DB, id string) (bool, error) {
	var count int64
	if err := visible(db.Model(&models.Tour{})).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *TourRepositoryImpl) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := visible(db.Model(&models.Tour{})).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrTourAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTourNotFound
	}
	return nil
}

func (r *TourRepositoryImpl) ReplaceGuides(db *gorm.DB, tour *models.Tour, guides []models.User) error {
	return db.Model(tour).Association("Guides").Replace(guides)
}

func (r *TourRepositoryImpl) UpdateRatings(db *gorm.DB, id string, average float64, quantity int64) error {
	result := db.Model(&models.Tour{}).Where("id = ?", id).Updates(map[string]interface{}{
		"ratings_average":  average,
		"ratings_quantity": quantity,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTourNotFound
	}
	return nil
}

// Delete удаляет тур вместе с отзывами и связями с гидами
func (r *TourRepositoryImpl) Delete(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var tour models.Tour
		if err := visible(tx).Where("id = ?", id).First(&tour).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTourNotFound
			}
			return err
		}
		if err := tx.Where("tour_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&tour).Association("Guides").Clear(); err != nil {
			return err
		}
		return tx.Delete(&tour).Error
	})
}

func (r *TourRepositoryImpl) Stats(db *gorm.DB, minRating float64) ([]TourStats, error) {
	var stats []TourStats
	err := visible(db.Model(&models.Tour{})).
		Select(`UPPER(difficulty) AS difficulty,
			COUNT(*) AS num_tours,
			COALESCE(SUM(ratings_quantity), 0) AS num_ratings,
			AVG(ratings_average) AS avg_rating,
			AVG(price) AS avg_price,
			MIN(price) AS min_price,
			MAX(price) AS max_price`).
		Where("ratings_average >= ?", minRating).
		Group("difficulty").
		Order("avg_price").
		Scan(&stats).Error
	return stats, err
}
