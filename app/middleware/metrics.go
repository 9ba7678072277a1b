package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	shortLinkRedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlink_redirects_total",
			Help: "Total shortlink resolutions partitioned by outcome",
		},
		[]string{"outcome"},
	)

	rateLimitRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Requests rejected by the sliding-window limiter",
		},
		[]string{"operation"},
	)
)

// Metrics returns a Fiber middleware that records request counts, latencies,
// and in-flight gauge. The matched route template is used as the route label
// to keep cardinality low.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		err := c.Next()

		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}

		labels := prometheus.Labels{
			"method": c.Method(),
			"route":  route,
			"status": strconv.Itoa(c.Response().StatusCode()),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}

// RecordRedirect counts one shortlink resolution. outcome is "hit",
// "not_found", "inactive", or "error".
func RecordRedirect(outcome string) {
	shortLinkRedirectsTotal.WithLabelValues(outcome).Inc()
}

// RecordRateLimitRejection counts one limiter rejection for the operation.
func RecordRateLimitRejection(operation string) {
	rateLimitRejectionsTotal.WithLabelValues(operation).Inc()
}
