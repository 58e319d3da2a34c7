package dto

import (
	"time"

	"natours_backend/internal/models"
)

type CreateTourRequest struct {
	Name          string            `json:"name" validate:"required,min=10,max=40"`
	Duration      int               `json:"duration" validate:"required,gt=0"`
	MaxGroupSize  int               `json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty    models.Difficulty `json:"difficulty" validate:"required,is-difficulty"`
	Price         float64           `json:"price" validate:"required,gt=0"`
	PriceDiscount *float64          `json:"priceDiscount" validate:"omitempty,min=0,lt-price"`
	Summary       string            `json:"summary" validate:"required"`
	Description   string            `json:"description"`
	ImageCover    string            `json:"imageCover" validate:"required"`
	Images        []string          `json:"images"`
	StartDates    []time.Time       `json:"startDates"`
	StartLocation *models.GeoPoint  `json:"startLocation"`
	Locations     []models.TourStop `json:"locations"`
	Guides        []string          `json:"guides" validate:"omitempty,dive,uuid"`
	SecretTour    bool              `json:"secretTour"`
}

// UpdateTourRequest - частичное обновление, nil = не менять.
// secretTour задается только при создании
type UpdateTourRequest struct {
	Name          *string            `json:"name" validate:"omitempty,min=10,max=40"`
	Duration      *int               `json:"duration" validate:"omitempty,gt=0"`
	MaxGroupSize  *int               `json:"maxGroupSize" validate:"omitempty,gt=0"`
	Difficulty    *models.Difficulty `json:"difficulty" validate:"omitempty,is-difficulty"`
	Price         *float64           `json:"price" validate:"omitempty,gt=0"`
	PriceDiscount *float64           `json:"priceDiscount" validate:"omitempty,min=0,lt-price"`
	Summary       *string            `json:"summary" validate:"omitempty,min=1"`
	Description   *string            `json:"description"`
	ImageCover    *string            `json:"imageCover" validate:"omitempty,min=1"`
	Images        []string           `json:"images"`
	StartDates    []time.Time        `json:"startDates"`
	StartLocation *models.GeoPoint   `json:"startLocation"`
	Locations     []models.TourStop  `json:"locations"`
	Guides        []string           `json:"guides" validate:"omitempty,dive,uuid"`
}

// TourResponse добавляет виртуальное durationWeeks
type TourResponse struct {
	*models.Tour
	DurationWeeks float64 `json:"durationWeeks"`
}

func NewTourResponse(t *models.Tour) *TourResponse {
	if t == nil {
		return nil
	}
	return &TourResponse{Tour: t, DurationWeeks: t.DurationWeeks()}
}

func NewTourResponses(tours []models.Tour) []*TourResponse {
	out := make([]*TourResponse, 0, len(tours))
	for i := range tours {
		out = append(out, NewTourResponse(&tours[i]))
	}
	return out
}

// MonthlyPlanEntry - сколько туров стартует в месяце года
type MonthlyPlanEntry struct {
	Month         int      `json:"month"`
	NumTourStarts int      `json:"numTourStarts"`
	Tours         []string `json:"tours"`
}

// TourDistance - расстояние от точки до startLocation тура
type TourDistance struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

// GeoQuery - разобранные параметры гео-маршрутов
type GeoQuery struct {
	Lat  float64
	Lng  float64
	Unit string
}
