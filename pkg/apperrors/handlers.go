package apperrors

import (
	"net/http"

	"natours_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Status string    `json:"status"`
	Error  *AppError `json:"error"`
}

// HandleError пишет ошибку в ответ. Не-AppError превращается в
// INTERNAL_ERROR без подробностей, сами подробности уходят в лог.
func HandleError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	if appErr.HTTPCode >= http.StatusInternalServerError {
		cause := appErr.Unwrap()
		if cause == nil {
			cause = appErr
		}
		logger.CtxWithError(c.Request.Context(), "server error", cause,
			"code", appErr.Code,
			"path", c.Request.URL.Path,
		)
	}

	c.JSON(appErr.HTTPCode, ErrorResponse{
		Status: StatusFor(appErr.HTTPCode),
		Error:  appErr,
	})
}

// AbortWithError - HandleError + прерывание цепочки middleware
func AbortWithError(c *gin.Context, err error) {
	HandleError(c, err)
	c.Abort()
}

// StatusFor: "fail" для 4xx, "error" для 5xx
func StatusFor(httpCode int) string {
	if httpCode >= http.StatusInternalServerError {
		return "error"
	}
	return "fail"
}

// AsAppError - пытается преобразовать error в *AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
