package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// AuthEvents: event = signup|login|password_reset_request|password_reset|password_change,
	// result = success|failure
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_events_total",
		Help: "Credential lifecycle events.",
	}, []string{"event", "result"})

	RatingRecomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rating_recomputes_total",
		Help: "Tour rating recomputations by result.",
	}, []string{"result"})
)

// RecordAuth увеличивает счетчик события аутентификации
func RecordAuth(event string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	AuthEvents.WithLabelValues(event, result).Inc()
}

// Handler - /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
