package services

import (
	"strings"

	"natours_backend/internal/auth"
	"natours_backend/internal/logger"
	"natours_backend/internal/models"
	"natours_backend/internal/query"
	"natours_backend/internal/repositories"
	"natours_backend/internal/services/dto"
	"natours_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type UserService interface {
	GetUser(db *gorm.DB, id string) (*dto.UserResponse, error)
	ListUsers(db *gorm.DB, q *query.Query) ([]*dto.UserResponse, error)
	// UpdateMe меняет только профиль; поля пароля отклоняются
	UpdateMe(db *gorm.DB, userID string, req *dto.UpdateMeRequest) (*dto.UserResponse, error)
	// DeleteMe - мягкое удаление (active = false)
	DeleteMe(db *gorm.DB, userID string) error

	AdminUpdateUser(db *gorm.DB, id string, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error)
	// AdminDeleteUser удаляет пользователя физически и пересчитывает рейтинги его туров
	AdminDeleteUser(db *gorm.DB, id string) error

	// EnsureAdmin создает первого администратора, если email свободен
	EnsureAdmin(db *gorm.DB, name, emailAddr, password string) (bool, error)
}

type UserServiceImpl struct {
	userRepo   repositories.UserRepository
	reviewRepo repositories.ReviewRepository
	ratings    RatingAggregator
	bcryptCost int
}

func NewUserService(
	userRepo repositories.UserRepository,
	reviewRepo repositories.ReviewRepository,
	ratings RatingAggregator,
	bcryptCost int,
) UserService {
	return &UserServiceImpl{
		userRepo:   userRepo,
		reviewRepo: reviewRepo,
		ratings:    ratings,
		bcryptCost: bcryptCost,
	}
}

func (s *UserServiceImpl) GetUser(db *gorm.DB, id string) (*dto.UserResponse, error) {
	user, err := s.findActive(db, id)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *UserServiceImpl) ListUsers(db *gorm.DB, q *query.Query) ([]*dto.UserResponse, error) {
	users, err := s.userRepo.FindAll(db, q)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewUserResponses(users), nil
}

func (s *UserServiceImpl) UpdateMe(db *gorm.DB, userID string, req *dto.UpdateMeRequest) (*dto.UserResponse, error) {
	if req.Password != nil || req.PasswordConfirm != nil {
		return nil, apperrors.ErrPasswordUpdateNotAllow
	}

	fields, err := s.profileFields(db, userID, req.Name, req.Email, req.Photo)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(db, userID, fields)
}

func (s *UserServiceImpl) DeleteMe(db *gorm.DB, userID string) error {
	if err := s.userRepo.Deactivate(db, userID); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NotFound("user")
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *UserServiceImpl) AdminUpdateUser(db *gorm.DB, id string, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error) {
	if req.Password != nil {
		return nil, apperrors.ErrPasswordUpdateNotAllow
	}
	if _, err := s.findActive(db, id); err != nil {
		return nil, err
	}

	fields, err := s.profileFields(db, id, req.Name, req.Email, req.Photo)
	if err != nil {
		return nil, err
	}
	if req.Role != nil {
		if !req.Role.IsValid() {
			return nil, apperrors.ValidationError(map[string]string{"role": "Must be one of: user, guide, lead-guide, admin"})
		}
		fields["role"] = *req.Role
	}
	return s.applyUpdate(db, id, fields)
}

func (s *UserServiceImpl) AdminDeleteUser(db *gorm.DB, id string) error {
	if _, err := s.userRepo.FindByID(db, id); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NotFound("user")
		}
		return apperrors.InternalError(err)
	}

	// Туры, чьи рейтинги изменятся после удаления отзывов пользователя
	tourIDs, err := s.reviewRepo.TourIDsByUser(db, id)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.reviewRepo.DeleteByUser(db, id); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.userRepo.Delete(db, id); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NotFound("user")
		}
		return apperrors.InternalError(err)
	}

	for _, tourID := range tourIDs {
		if _, err := s.ratings.Recompute(db, tourID); err != nil {
			return apperrors.InternalError(err)
		}
	}
	return nil
}

func (s *UserServiceImpl) EnsureAdmin(db *gorm.DB, name, emailAddr, password string) (bool, error) {
	addr := normalizeEmail(emailAddr)
	taken, err := s.userRepo.EmailTaken(db, addr, "")
	if err != nil {
		return false, err
	}
	if taken {
		return false, nil
	}

	if err := auth.ValidatePassword(password); err != nil {
		return false, err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return false, err
	}

	admin := &models.User{
		Name:         name,
		Email:        addr,
		Role:         models.UserRoleAdmin,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.userRepo.Create(db, admin); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	logger.Info("First admin user created", "email", addr)
	return true, nil
}

func (s *UserServiceImpl) findActive(db *gorm.DB, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.InternalError(err)
	}
	if !user.Active {
		return nil, apperrors.NotFound("user")
	}
	return user, nil
}

func (s *UserServiceImpl) profileFields(db *gorm.DB, userID string, name, emailAddr, photo *string) (map[string]interface{}, error) {
	fields := make(map[string]interface{})
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.ValidationError(map[string]string{"name": "This field is required"})
		}
		fields["name"] = trimmed
	}
	if emailAddr != nil {
		addr := normalizeEmail(*emailAddr)
		taken, err := s.userRepo.EmailTaken(db, addr, userID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if taken {
			return nil, apperrors.ErrEmailTaken
		}
		fields["email"] = addr
	}
	if photo != nil {
		fields["photo"] = strings.TrimSpace(*photo)
	}
	return fields, nil
}

func (s *UserServiceImpl) applyUpdate(db *gorm.DB, id string, fields map[string]interface{}) (*dto.UserResponse, error) {
	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(db, id, fields); err != nil {
			switch {
			case apperrors.Is(err, repositories.ErrUserAlreadyExists):
				return nil, apperrors.ErrEmailTaken
			case apperrors.Is(err, repositories.ErrUserNotFound):
				return nil, apperrors.NotFound("user")
			}
			return nil, apperrors.InternalError(err)
		}
	}
	return s.GetUser(db, id)
}
