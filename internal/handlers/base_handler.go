package handlers

import (
	"errors"
	"fmt"
	"io"

	"natours_backend/internal/logger"
	"natours_backend/internal/middleware"
	"natours_backend/internal/models"
	"natours_backend/internal/validator"
	"natours_backend/pkg/apperrors"
	"natours_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ============================================================================
// 1. Базовая структура обработчика
// ============================================================================

type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{
		validator: v,
	}
}

// ============================================================================
// 2. Извлечение DB
// ============================================================================

// GetDB извлекает *gorm.DB из gin.Context.
// Без DBMiddleware приложение сконфигурировано неверно - паника
func (h *BaseHandler) GetDB(c *gin.Context) *gorm.DB {
	db, ok := middleware.GetDB(c)
	if !ok {
		val, _ := c.Get(string(contextkeys.DBContextKey))
		logger.CtxError(c.Request.Context(), "critical error: db not found in context",
			"key", string(contextkeys.DBContextKey), "type", fmt.Sprintf("%T", val))
		panic("critical error: DBMiddleware did not set the db key")
	}
	return db
}

// ============================================================================
// 3. Привязка и валидация
// ============================================================================

func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		logger.CtxWithError(ctx, "Failed to bind JSON body", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body: "+err.Error()))
		return false
	}

	if err := h.validator.Validate(obj); err != nil {
		var vErr *validator.ValidationError
		if errors.As(err, &vErr) {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

// ============================================================================
// 4. Обработка ошибок сервисов
// ============================================================================

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		if appErr.HTTPCode < 500 {
			logger.CtxWarn(ctx, "Service error",
				"code", appErr.Code,
				"error", appErr.Message,
				"details", appErr.Details,
				"path", c.Request.URL.Path,
			)
		}
		apperrors.HandleError(c, appErr)
	} else {
		apperrors.HandleError(c, apperrors.InternalError(err))
	}
}

// ============================================================================
// 5. Текущий пользователь
// ============================================================================

// CurrentUser - пользователь из Protect. Если его нет, отвечает 401
func (h *BaseHandler) CurrentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		logger.CtxWarn(c.Request.Context(), "Unauthorized access: user not found in context",
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
		)
		apperrors.HandleError(c, apperrors.ErrUnauthenticated)
		return nil, false
	}
	return user, true
}
