// Package metrics holds the Prometheus collectors of the service and the
// Gin middleware that feeds the HTTP ones.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "status_code"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"path", "method", "status_code"})

	cacheRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cache_request_duration_seconds",
		Help:    "Duration of cache requests.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to 6.5s
	}, []string{"method", "cache_hit"})

	cacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_requests_total",
		Help: "Total number of cache requests.",
	}, []string{"method", "cache_hit"})
)

// ObserveHTTPRequest records the duration and outcome of an HTTP request
func ObserveHTTPRequest(path, method, statusCode string, duration time.Duration) {
	httpRequestDuration.WithLabelValues(path, method, statusCode).Observe(duration.Seconds())
	httpRequestsTotal.WithLabelValues(path, method, statusCode).Inc()
}

// ObserveCacheRequest records the duration of a cache call and whether it hit
func ObserveCacheRequest(method string, hit bool, duration time.Duration) {
	hitStr := strconv.FormatBool(hit)
	cacheRequestDuration.WithLabelValues(method, hitStr).Observe(duration.Seconds())
	cacheRequestsTotal.WithLabelValues(method, hitStr).Inc()
}
