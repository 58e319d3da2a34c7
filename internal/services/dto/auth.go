package dto

import (
	"natours_backend/internal/models"
)

// SignupRequest - регистрация. Роль admin через signup не выдается
type SignupRequest struct {
	Name            string          `json:"name" validate:"required,max=100"`
	Email           string          `json:"email" validate:"required,email"`
	Password        string          `json:"password" validate:"required,min=8"`
	PasswordConfirm string          `json:"passwordConfirm" validate:"required"`
	Role            models.UserRole `json:"role" validate:"omitempty,is-signup-role"`
}

// LoginRequest - пустые поля проверяет сервис (ErrMissingCredentials)
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest - сырой токен приходит в пути, не в теле
type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

// AuthResponse - токен сессии и пользователь без хеша
type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}
