package middleware

import (
	"strconv"
	"time"

	"natours_backend/internal/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware считает запросы по шаблону маршрута, а не по сырому пути
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
