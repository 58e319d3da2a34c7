package services

import (
	"fmt"
	"math"

	"natours_backend/internal/metrics"
	"natours_backend/internal/models"
	"natours_backend/internal/repositories"

	"gorm.io/gorm"
)

// TourRating - производные поля тура после пересчета
type TourRating struct {
	Average  float64 `json:"ratingsAverage"`
	Quantity int64   `json:"ratingsQuantity"`
}

// RatingAggregator держит ratingsAverage/ratingsQuantity тура в
// соответствии с его отзывами
type RatingAggregator interface {
	Recompute(db *gorm.DB, tourID string) (*TourRating, error)
}

type RatingAggregatorImpl struct {
	reviewRepo repositories.ReviewRepository
	tourRepo   repositories.TourRepository
}

func NewRatingAggregator(reviewRepo repositories.ReviewRepository, tourRepo repositories.TourRepository) RatingAggregator {
	return &RatingAggregatorImpl{
		reviewRepo: reviewRepo,
		tourRepo:   tourRepo,
	}
}

// Recompute идемпотентен: повторный вызов без изменений отзывов пишет то же самое
func (a *RatingAggregatorImpl) Recompute(db *gorm.DB, tourID string) (*TourRating, error) {
	rating, err := a.recompute(db, tourID)
	if err != nil {
		metrics.RatingRecomputes.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.RatingRecomputes.WithLabelValues("success").Inc()
	return rating, nil
}

func (a *RatingAggregatorImpl) recompute(db *gorm.DB, tourID string) (*TourRating, error) {
	stats, err := a.reviewRepo.RatingStats(db, tourID)
	if err != nil {
		return nil, fmt.Errorf("rating stats for tour %s: %w", tourID, err)
	}

	rating := &TourRating{Average: models.DefaultRatingsAverage}
	if stats.Quantity > 0 && stats.Average != nil {
		rating.Quantity = stats.Quantity
		rating.Average = roundRating(*stats.Average)
	}

	if err := a.tourRepo.UpdateRatings(db, tourID, rating.Average, rating.Quantity); err != nil {
		return nil, fmt.Errorf("update ratings for tour %s: %w", tourID, err)
	}
	return rating, nil
}

// roundRating: 4.666 -> 4.7
func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
