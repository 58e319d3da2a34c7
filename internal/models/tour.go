package models

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	DefaultRatingsAverage = 4.5
	TourNameMinLength     = 10
	TourNameMaxLength     = 40
)

// GeoPoint - точка в формате GeoJSON: Coordinates = [lng, lat]
type GeoPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
	Address     string    `json:"address,omitempty"`
	Description string    `json:"description,omitempty"`
}

func (p GeoPoint) Valid() bool {
	return len(p.Coordinates) == 2
}

func (p GeoPoint) Lng() float64 { return p.Coordinates[0] }
func (p GeoPoint) Lat() float64 { return p.Coordinates[1] }

// TourStop - точка маршрута с номером дня
type TourStop struct {
	GeoPoint
	Day int `json:"day"`
}

type Tour struct {
	BaseModel
	Name          string     `gorm:"uniqueIndex;size:40;not null" json:"name"`
	Slug          string     `gorm:"index" json:"slug"`
	Duration      int        `gorm:"not null" json:"duration"`
	MaxGroupSize  int        `gorm:"not null" json:"maxGroupSize"`
	Difficulty    Difficulty `gorm:"type:varchar(20);not null" json:"difficulty"`
	Price         float64    `gorm:"not null" json:"price"`
	PriceDiscount *float64   `json:"priceDiscount,omitempty"`
	Summary       string     `gorm:"not null" json:"summary"`
	Description   string     `gorm:"type:text" json:"description"`
	ImageCover    string     `gorm:"not null" json:"imageCover"`

	// Производные поля, пишет только пересчет рейтинга
	RatingsAverage  float64 `gorm:"not null;default:4.5" json:"ratingsAverage"`
	RatingsQuantity int     `gorm:"not null;default:0" json:"ratingsQuantity"`

	Images        datatypes.JSONSlice[string]    `json:"images"`
	StartDates    datatypes.JSONSlice[time.Time] `json:"startDates"`
	StartLocation datatypes.JSONType[GeoPoint]   `json:"startLocation"`
	Locations     datatypes.JSONSlice[TourStop]  `json:"locations"`

	SecretTour bool `gorm:"not null;default:false" json:"-"`

	Guides  []User   `gorm:"many2many:tour_guides;constraint:OnDelete:CASCADE" json:"guides,omitempty"`
	Reviews []Review `gorm:"foreignKey:TourID" json:"reviews,omitempty"`
}

// DurationWeeks - виртуальное поле ответа
func (t *Tour) DurationWeeks() float64 {
	return float64(t.Duration) / 7
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify: "The Forest Hiker" -> "the-forest-hiker"
func Slugify(name string) string {
	s := slugInvalid.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
