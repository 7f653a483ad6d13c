package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsCaptured = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_captured_total",
			Help: "Total number of leads submitted",
		},
	)

	leadsSold = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_sold_total",
			Help: "Total number of leads sold",
		},
	)

	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total number of gateway webhook events by outcome",
		},
		[]string{"outcome"},
	)

	reconciliationsRequired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconciliations_required_total",
			Help: "Total number of paid-but-unfulfilled purchases needing refunds",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordLeadCaptured() {
	leadsCaptured.Inc()
}

func RecordLeadSold() {
	leadsSold.Inc()
}

func RecordWebhookEvent(outcome string) {
	webhookEvents.WithLabelValues(outcome).Inc()
}

func RecordReconciliationRequired() {
	reconciliationsRequired.Inc()
}
