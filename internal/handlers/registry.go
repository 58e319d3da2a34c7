package handlers

import (
	"natours_backend/internal/services"
	"natours_backend/internal/validator"
)

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler   *AuthHandler
	UserHandler   *UserHandler
	TourHandler   *TourHandler
	ReviewHandler *ReviewHandler
	HealthHandler *HealthHandler
}

// NewAppHandlers собирает хэндлеры поверх контейнера сервисов
func NewAppHandlers(svc *services.ServiceContainer, v *validator.Validator, cookie CookieConfig, resetURLBase string) *AppHandlers {
	base := NewBaseHandler(v)
	return &AppHandlers{
		AuthHandler:   NewAuthHandler(base, svc.AuthService, cookie, resetURLBase),
		UserHandler:   NewUserHandler(base, svc.UserService),
		TourHandler:   NewTourHandler(base, svc.TourService),
		ReviewHandler: NewReviewHandler(base, svc.ReviewService),
		HealthHandler: NewHealthHandler(base),
	}
}
