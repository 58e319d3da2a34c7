package services

import (
	"strings"

	"natours_backend/internal/auth"
	"natours_backend/internal/models"
	"natours_backend/internal/query"
	"natours_backend/internal/repositories"
	"natours_backend/internal/services/dto"
	"natours_backend/pkg/apperrors"

	"gorm.io/gorm"
)

var errAlreadyReviewed = apperrors.ValidationError(map[string]string{"tour": "You have already reviewed this tour"})

type ReviewService interface {
	// CreateReview: pathTourID из /tours/:id/reviews, тело может его переопределить
	CreateReview(db *gorm.DB, author *models.User, pathTourID string, req *dto.CreateReviewRequest) (*models.Review, error)
	GetReview(db *gorm.DB, id string) (*models.Review, error)
	ListReviews(db *gorm.DB, tourID string, q *query.Query) ([]models.Review, error)
	UpdateReview(db *gorm.DB, actor *models.User, id string, req *dto.UpdateReviewRequest) (*models.Review, error)
	DeleteReview(db *gorm.DB, actor *models.User, id string) error
}

type ReviewServiceImpl struct {
	reviewRepo repositories.ReviewRepository
	tourRepo   repositories.TourRepository
	ratings    RatingAggregator
}

func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	tourRepo repositories.TourRepository,
	ratings RatingAggregator,
) ReviewService {
	return &ReviewServiceImpl{
		reviewRepo: reviewRepo,
		tourRepo:   tourRepo,
		ratings:    ratings,
	}
}

func (s *ReviewServiceImpl) CreateReview(db *gorm.DB, author *models.User, pathTourID string, req *dto.CreateReviewRequest) (*models.Review, error) {
	tourID := req.Tour
	if tourID == "" {
		tourID = pathTourID
	}
	if tourID == "" {
		return nil, apperrors.ValidationError(map[string]string{"tour": "Review must belong to a tour"})
	}

	exists, err := s.tourRepo.Exists(db, tourID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !exists {
		return nil, apperrors.NotFound("tour")
	}

	already, err := s.reviewRepo.ExistsForTourAndUser(db, tourID, author.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if already {
		return nil, errAlreadyReviewed
	}

	review := &models.Review{
		Review: strings.TrimSpace(req.Review),
		Rating: req.Rating,
		TourID: tourID,
		UserID: author.ID,
	}
	if err := s.reviewRepo.Create(db, review); err != nil {
		if apperrors.Is(err, repositories.ErrReviewAlreadyExists) {
			return nil, errAlreadyReviewed
		}
		return nil, apperrors.InternalError(err)
	}

	if _, err := s.ratings.Recompute(db, review.TourID); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return s.GetReview(db, review.ID)
}

func (s *ReviewServiceImpl) GetReview(db *gorm.DB, id string) (*models.Review, error) {
	review, err := s.reviewRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrReviewNotFound) {
			return nil, apperrors.NotFound("review")
		}
		return nil, apperrors.InternalError(err)
	}
	return review, nil
}

func (s *ReviewServiceImpl) ListReviews(db *gorm.DB, tourID string, q *query.Query) ([]models.Review, error) {
	reviews, err := s.reviewRepo.FindAll(db, tourID, q)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return reviews, nil
}

// UpdateReview: тур захватывается до изменения, затем пересчитывается
func (s *ReviewServiceImpl) UpdateReview(db *gorm.DB, actor *models.User, id string, req *dto.UpdateReviewRequest) (*models.Review, error) {
	ref, err := s.findManageable(db, actor, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Review != nil {
		fields["review"] = strings.TrimSpace(*req.Review)
	}
	if req.Rating != nil {
		fields["rating"] = *req.Rating
	}

	if len(fields) > 0 {
		if err := s.reviewRepo.UpdateFields(db, id, fields); err != nil {
			if apperrors.Is(err, repositories.ErrReviewNotFound) {
				return nil, apperrors.NotFound("review")
			}
			return nil, apperrors.InternalError(err)
		}
		if _, err := s.ratings.Recompute(db, ref.TourID); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	return s.GetReview(db, id)
}

func (s *ReviewServiceImpl) DeleteReview(db *gorm.DB, actor *models.User, id string) error {
	ref, err := s.findManageable(db, actor, id)
	if err != nil {
		return err
	}

	if err := s.reviewRepo.Delete(db, id); err != nil {
		if apperrors.Is(err, repositories.ErrReviewNotFound) {
			return apperrors.NotFound("review")
		}
		return apperrors.InternalError(err)
	}

	if _, err := s.ratings.Recompute(db, ref.TourID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// findManageable возвращает ссылку на отзыв, если actor - автор или admin
func (s *ReviewServiceImpl) findManageable(db *gorm.DB, actor *models.User, id string) (*models.Review, error) {
	ref, err := s.reviewRepo.FindRef(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrReviewNotFound) {
			return nil, apperrors.NotFound("review")
		}
		return nil, apperrors.InternalError(err)
	}
	if !auth.CanManageReview(actor, ref) {
		return nil, apperrors.ErrForbidden
	}
	return ref, nil
}
