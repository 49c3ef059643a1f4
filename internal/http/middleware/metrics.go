// Package middleware contains the shared Gin middleware for the HTTP layer.
//
// This file holds the Prometheus instrumentation. Metrics() records request
// counts, latency, in-flight concurrency, and response sizes, labeled so that
// cardinality stays bounded:
//
//   - method: HTTP verb
//   - path:   the registered route pattern (e.g. /api/v1/characters/:id/posts),
//     with the raw URL path as fallback when no route matched
//   - status: numeric status code as a string ("200", "404")
//
// Raw URLs never become labels for matched routes, so a crawler hitting every
// character id produces one series, not thousands.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// reqCount counts requests by method, route, and status.
	reqCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// reqLatency records duration in seconds by method and route. Status is
	// left off the histogram to keep its cardinality down.
	reqLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// reqInflight gauges requests currently being handled.
	reqInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// respBytes captures response sizes. Buckets span small JSON envelopes
	// through paginated character listings up to avatar-sized payloads.
	respBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_size_bytes",
			Help: "Size of HTTP responses in bytes.",
			Buckets: []float64{
				200, 500, 1 << 10, 2 << 10, 5 << 10,
				10 << 10, 25 << 10, 50 << 10,
				100 << 10, 250 << 10, 500 << 10,
				1 << 20, 2 << 20, 5 << 20,
			},
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(reqCount, reqLatency, reqInflight, respBytes)
}

// Metrics returns a Gin middleware instrumenting every request. Mount the
// scrape endpoint next to it:
//
//	r.Use(middleware.Metrics())
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
// Response size is skipped when the writer reports -1 (nothing written, or a
// hijacked connection such as the message stream upgrade).
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqInflight.Inc()
		defer reqInflight.Dec()

		c.Next()

		dur := time.Since(start).Seconds()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		reqCount.WithLabelValues(method, path, status).Inc()
		reqLatency.WithLabelValues(method, path).Observe(dur)
		if size := c.Writer.Size(); size >= 0 {
			respBytes.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
