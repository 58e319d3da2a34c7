package services

import (
	"natours_backend/internal/auth"
	"natours_backend/internal/email"
	"natours_backend/internal/repositories"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService      AuthService
	UserService      UserService
	TourService      TourService
	ReviewService    ReviewService
	RatingAggregator RatingAggregator
}

// NewServiceContainer собирает репозитории и сервисы
func NewServiceContainer(tokens *auth.TokenService, notifier email.Notifier, opts AuthOptions) *ServiceContainer {
	userRepo := repositories.NewUserRepository()
	tourRepo := repositories.NewTourRepository()
	reviewRepo := repositories.NewReviewRepository()

	ratings := NewRatingAggregator(reviewRepo, tourRepo)

	return &ServiceContainer{
		AuthService:      NewAuthService(userRepo, tokens, notifier, opts),
		UserService:      NewUserService(userRepo, reviewRepo, ratings, opts.BcryptCost),
		TourService:      NewTourService(tourRepo, userRepo),
		ReviewService:    NewReviewService(reviewRepo, tourRepo, ratings),
		RatingAggregator: ratings,
	}
}
