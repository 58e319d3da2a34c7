package routes

import (
	"natours_backend/internal/handlers"
	"natours_backend/internal/logger"
	"natours_backend/internal/metrics"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты.
// protect - middleware проверки токена, общий для всех групп
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	protect gin.HandlerFunc,
) {
	ginRouter.GET("/healthz", appHandlers.HealthHandler.Healthz)
	ginRouter.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Регистрация HTTP API v1
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api, protect)
		appHandlers.UserHandler.RegisterRoutes(api, protect)
		appHandlers.TourHandler.RegisterRoutes(api, protect)
		appHandlers.ReviewHandler.RegisterRoutes(api, protect)
	}
	logger.Info("HTTP routes registered", "routes", len(ginRouter.Routes()))
}
