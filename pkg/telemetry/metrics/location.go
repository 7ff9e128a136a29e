package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LocationMetrics tracks public location computations. Coordinates are
// never used as labels.
type LocationMetrics struct {
	offsetsTotal   *prometheus.CounterVec
	offsetDuration prometheus.Histogram
}

// NewLocationMetrics creates and registers location metrics with the provided registry.
func NewLocationMetrics(namespace string, registry *prometheus.Registry) *LocationMetrics {
	lm := &LocationMetrics{
		offsetsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: SubsystemLocation,
				Name:      "offsets_total",
				Help:      "Total number of public location computations",
			},
			[]string{"status"},
		),
		offsetDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: SubsystemLocation,
				Name:      "offset_duration_seconds",
				Help:      "Duration of public location computations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0000001, 2, 12), // 100ns to 200µs
			},
		),
	}

	registry.MustRegister(lm.offsetsTotal, lm.offsetDuration)
	return lm
}

// RecordOffset records one computation.
func (lm *LocationMetrics) RecordOffset(status string, duration time.Duration) {
	lm.offsetsTotal.WithLabelValues(status).Inc()
	lm.offsetDuration.Observe(duration.Seconds())
}
