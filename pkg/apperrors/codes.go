package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

const (
	// Учетные данные и сессии
	CodeInvalidCredentials    ErrorCode = "INVALID_CREDENTIALS"
	CodeUnauthenticated       ErrorCode = "UNAUTHENTICATED"
	CodeStalePassword         ErrorCode = "STALE_PASSWORD"
	CodeAccountInvalidated    ErrorCode = "ACCOUNT_INVALIDATED"
	CodeForbidden             ErrorCode = "FORBIDDEN"
	CodeInvalidOrExpiredToken ErrorCode = "INVALID_OR_EXPIRED_TOKEN"

	// Валидация и ресурсы
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"

	// Системные ошибки
	CodeNotifierFailure ErrorCode = "NOTIFIER_FAILURE"
	CodeInternalError   ErrorCode = "INTERNAL_ERROR"
)
