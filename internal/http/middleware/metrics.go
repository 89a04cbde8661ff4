package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Label cardinality stays bounded: path is the registered Gin route
// (c.FullPath()) and only falls back to the raw URL for unmatched requests.
var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// Pages and catalog PDFs push this well past typical API sizes.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_size_bytes",
			Help: "Size of HTTP responses in bytes.",
			Buckets: []float64{
				500, 2 << 10, 10 << 10, 50 << 10,
				250 << 10, 1 << 20, 5 << 20, 20 << 20,
			},
		},
		[]string{"method", "path"},
	)

	// authRejects counts requests turned away by the admin guard, by surface
	// ("page" redirect or "api" 401).
	authRejects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_auth_rejections_total",
			Help: "Requests rejected by the admin auth guard.",
		},
		[]string{"surface"},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected with 429 by the rate limiter.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, authRejects, rateLimited)
}

// Metrics instruments every request with Prometheus counters and histograms.
// Mount promhttp.Handler() separately (the router serves it on /metrics).
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		// Unmatched paths share one label value.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpReqs.WithLabelValues(method, path, status).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		// -1 when nothing was written.
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
