package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"method", "endpoint"},
	)

	PlansCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intervention_plans_created_total",
			Help: "Intervention plans created, by category",
		},
		[]string{"category"},
	)

	PlanTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intervention_plan_transitions_total",
			Help: "Intervention plan status changes, by target status",
		},
		[]string{"status"},
	)

	ResponsesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intervention_responses_total",
			Help: "Student responses recorded against intervention plans",
		},
		[]string{"correct"},
	)

	UploadURLsIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upload_urls_issued_total",
			Help: "Pre-signed upload URLs issued, by folder",
		},
		[]string{"folder"},
	)
)

func Init() {
	prometheus.MustRegister(
		RequestCounter,
		RequestDuration,
		PlansCreated,
		PlanTransitions,
		ResponsesRecorded,
		UploadURLsIssued,
	)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
