package httpkit

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
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

	webhookDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_dispatches_total",
			Help: "Total number of outbound workflow webhook dispatches",
		},
		[]string{"trigger", "outcome"},
	)

	webhookCallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_callbacks_total",
			Help: "Total number of inbound workflow webhook callbacks",
		},
		[]string{"endpoint", "outcome"},
	)

	leadsCaptured = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_captured_total",
			Help: "Total number of leads captured through the public form",
		},
	)
)

// Metrics records request counts and latencies per route.
// The templated route path is used as the label to keep cardinality bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordDispatch counts an outbound webhook dispatch attempt.
func RecordDispatch(trigger string, success bool) {
	webhookDispatches.WithLabelValues(trigger, outcomeLabel(success)).Inc()
}

// RecordCallback counts an inbound webhook callback.
func RecordCallback(endpoint string, success bool) {
	webhookCallbacks.WithLabelValues(endpoint, outcomeLabel(success)).Inc()
}

// RecordLeadCaptured counts a successful public lead submission.
func RecordLeadCaptured() {
	leadsCaptured.Inc()
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
