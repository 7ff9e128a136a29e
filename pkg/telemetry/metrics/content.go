package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ContentMetrics tracks content safety checks and dictionary reloads.
//
// Metrics:
//   - trustcore_content_checks_total: Checks by operation and result
//   - trustcore_content_check_duration_seconds: Normalize + match duration
//   - trustcore_content_violations_total: Violations by term category
//   - trustcore_content_dictionary_terms: Terms currently served
//   - trustcore_content_dictionary_reloads_total: Reloads by status
//   - trustcore_content_dictionary_reload_duration_seconds: Reload duration
type ContentMetrics struct {
	checksTotal    *prometheus.CounterVec
	checkDuration  *prometheus.HistogramVec
	violations     *prometheus.CounterVec
	terms          prometheus.Gauge
	reloadsTotal   *prometheus.CounterVec
	reloadDuration prometheus.Histogram
}

// NewContentMetrics creates and registers content metrics with the provided registry.
func NewContentMetrics(namespace string, registry *prometheus.Registry) *ContentMetrics {
	cm := &ContentMetrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: SubsystemContent,
				Name:      "checks_total",
				Help:      "Total number of content checks",
			},
			[]string{"operation", "result"},
		),

		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: SubsystemContent,
				Name:      "check_duration_seconds",
				Help:      "Duration of content checks in seconds",
				// Listing texts are short; checks take microseconds
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
			[]string{"operation"},
		),

		violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: SubsystemContent,
				Name:      "violations_total",
				Help:      "Total number of content violations by category",
			},
			[]string{"category"},
		),

		terms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: SubsystemContent,
				Name:      "dictionary_terms",
				Help:      "Number of prohibited terms currently served",
			},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: SubsystemContent,
				Name:      "dictionary_reloads_total",
				Help:      "Total number of dictionary reload attempts",
			},
			[]string{"status"},
		),

		reloadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: SubsystemContent,
				Name:      "dictionary_reload_duration_seconds",
				Help:      "Duration of dictionary reloads in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	registry.MustRegister(
		cm.checksTotal,
		cm.checkDuration,
		cm.violations,
		cm.terms,
		cm.reloadsTotal,
		cm.reloadDuration,
	)

	return cm
}

// RecordCheck records one check.
func (cm *ContentMetrics) RecordCheck(operation, result string, duration time.Duration) {
	cm.checksTotal.WithLabelValues(operation, result).Inc()
	cm.checkDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordViolation counts a violation of category.
func (cm *ContentMetrics) RecordViolation(category string) {
	cm.violations.WithLabelValues(category).Inc()
}

// SetTerms sets the dictionary size gauge.
func (cm *ContentMetrics) SetTerms(n int) {
	cm.terms.Set(float64(n))
}

// RecordReload records a reload attempt.
func (cm *ContentMetrics) RecordReload(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	cm.reloadsTotal.WithLabelValues(status).Inc()
	cm.reloadDuration.Observe(duration.Seconds())
}
