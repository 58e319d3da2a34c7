package apperrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError - основная структура ошибки приложения
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Domain   string      `json:"domain"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s (%v)", e.Domain, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Domain, e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду, чтобы копии из WithDetails/WithError
// находились через errors.Is по предопределенной переменной.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New - базовый конструктор
func New(code ErrorCode, domain, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Domain:   domain,
		Message:  message,
		HTTPCode: httpCode,
	}
}

// Wrap - оборачивает существующую ошибку в AppError
func Wrap(err error, code ErrorCode, domain, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Domain:   domain,
		Message:  message,
		Err:      err,
		HTTPCode: httpCode,
	}
}

// WithDetails возвращает копию, предопределенные ошибки не мутируются
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithError возвращает копию с причиной
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// MarshalJSON - для кастомного вывода JSON
func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Code    ErrorCode   `json:"code"`
		Domain  string      `json:"domain"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}
	return json.Marshal(&alias{
		Code:    e.Code,
		Domain:  e.Domain,
		Message: e.Message,
		Details: e.Details,
	})
}

// Is - обертка над стандартной функцией errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As - обертка над стандартной функцией errors.As
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// CodeOf возвращает код AppError из цепочки или пустую строку
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// --- Предопределенные ошибки ---

var (
	// Вход и регистрация
	ErrInvalidCredentials = New(CodeInvalidCredentials, "auth", "Incorrect email or password", http.StatusUnauthorized)
	ErrWrongPassword      = New(CodeInvalidCredentials, "auth", "Your current password is wrong", http.StatusUnauthorized)
	ErrMissingCredentials = New(CodeValidationFailed, "auth", "Please provide email and password", http.StatusBadRequest)
	ErrPasswordMismatch   = New(CodeValidationFailed, "auth", "Passwords are not the same", http.StatusBadRequest)
	ErrEmailTaken         = New(CodeValidationFailed, "auth", "Email is already in use", http.StatusBadRequest)

	// Проверка сессии
	ErrUnauthenticated    = New(CodeUnauthenticated, "auth", "You are not logged in! Please log in to get access", http.StatusUnauthorized)
	ErrInvalidToken       = New(CodeUnauthenticated, "auth", "Invalid token. Please log in again", http.StatusUnauthorized)
	ErrTokenExpired       = New(CodeUnauthenticated, "auth", "Your token has expired! Please log in again", http.StatusUnauthorized)
	ErrStalePassword      = New(CodeStalePassword, "auth", "User recently changed password! Please log in again", http.StatusUnauthorized)
	ErrAccountInvalidated = New(CodeAccountInvalidated, "auth", "The user belonging to this token no longer exists", http.StatusUnauthorized)
	ErrForbidden          = New(CodeForbidden, "auth", "You do not have permission to perform this action", http.StatusForbidden)

	// Сброс пароля
	ErrNoUserWithEmail        = New(CodeNotFound, "auth", "There is no user with that email address", http.StatusNotFound)
	ErrInvalidOrExpiredToken  = New(CodeInvalidOrExpiredToken, "auth", "Token is invalid or has expired", http.StatusBadRequest)
	ErrNotifierFailure        = New(CodeNotifierFailure, "notifier", "There was an error sending the email. Try again later", http.StatusInternalServerError)
	ErrPasswordUpdateNotAllow = New(CodeValidationFailed, "users", "This route is not for password updates. Please use /updateMyPassword", http.StatusBadRequest)
)

// --- Общие хелперы ---

// InternalError оборачивает неизвестную системную ошибку
func InternalError(err error) *AppError {
	return Wrap(err, CodeInternalError, "system", "Something went wrong", http.StatusInternalServerError)
}

// ValidationError создает ошибку валидации с деталями
func ValidationError(details interface{}) *AppError {
	return New(CodeValidationFailed, "validation", "Validation failed", http.StatusBadRequest).WithDetails(details)
}

// NotFound - 404 для конкретного ресурса
func NotFound(resource string) *AppError {
	return New(CodeResourceNotFound, resource, fmt.Sprintf("No %s found with that ID", resource), http.StatusNotFound)
}

// NewBadRequestError создает ошибку 400
func NewBadRequestError(message string) *AppError {
	return New(CodeValidationFailed, "request", message, http.StatusBadRequest)
}

// NewForbiddenError создает ошибку доступа
func NewForbiddenError(message string) *AppError {
	return New(CodeForbidden, "auth", message, http.StatusForbidden)
}
