package dto

import (
	"time"

	"natours_backend/internal/models"
)

// UserResponse - публичное представление пользователя
type UserResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Photo     string          `json:"photo"`
	Role      models.UserRole `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
}

func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Photo:     u.Photo,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func NewUserResponses(users []models.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// UpdateMeRequest - только name/email. Поля пароля принимаются,
// чтобы отклонить запрос с понятной ошибкой
type UpdateMeRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Photo           *string `json:"photo" validate:"omitempty,max=255"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"passwordConfirm"`
}

// AdminUpdateUserRequest - пароль админ не меняет
type AdminUpdateUserRequest struct {
	Name     *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Email    *string          `json:"email" validate:"omitempty,email"`
	Photo    *string          `json:"photo" validate:"omitempty,max=255"`
	Role     *models.UserRole `json:"role" validate:"omitempty,is-user-role"`
	Password *string          `json:"password"`
}
