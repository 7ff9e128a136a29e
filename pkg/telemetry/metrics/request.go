package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks HTTP requests served by the sidecar.
//
// Metrics:
//   - trustcore_http_requests_total: Requests by route, method, and status code
//   - trustcore_http_request_duration_seconds: Request duration by route
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(namespace string, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: SubsystemHTTP,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"route", "method", "code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: SubsystemHTTP,
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1},
			},
			[]string{"route"},
		),
	}

	registry.MustRegister(rm.requestsTotal, rm.requestDuration)
	return rm
}

// RecordRequest records a completed request. route must be the registered
// pattern, not the raw URL path.
func (rm *RequestMetrics) RecordRequest(route, method string, status int, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	rm.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
