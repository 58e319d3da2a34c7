package handlers

import (
	"net/http"

	"natours_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	*BaseHandler
}

func NewHealthHandler(base *BaseHandler) *HealthHandler {
	return &HealthHandler{BaseHandler: base}
}

// Healthz проверяет соединение с БД
func (h *HealthHandler) Healthz(c *gin.Context) {
	sqlDB, err := h.GetDB(c).DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "Health check failed", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "up"})
}
