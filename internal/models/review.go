package models

const (
	MinRating = 1
	MaxRating = 5
)

// Review: один отзыв на пару (тур, пользователь)
type Review struct {
	BaseModel
	Review string `gorm:"type:text;not null" json:"review"`
	Rating int    `gorm:"not null" json:"rating"`
	TourID string `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_tour_user" json:"tourId"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_tour_user" json:"userId"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Tour *Tour `gorm:"foreignKey:TourID;constraint:OnDelete:CASCADE" json:"-"`
}
