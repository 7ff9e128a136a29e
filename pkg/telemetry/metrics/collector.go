package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"mealshare/trustcore/pkg/config"
)

// Subsystem names used in metric names.
const (
	SubsystemContent  = "content"
	SubsystemLocation = "location"
	SubsystemHTTP     = "http"
)

// maxCategories bounds the category label. Dictionaries may define their
// own categories, so the label set is not fixed.
const maxCategories = 64

// Collector is the main orchestrator for all Prometheus metrics of the trust
// core. It manages metric registration and provides a unified interface for
// recording metrics across all components.
//
// A disabled collector accepts every call and records nothing. A nil
// *Collector is treated as disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	contentMetrics  *ContentMetrics
	locationMetrics *LocationMetrics
	requestMetrics  *RequestMetrics

	categoryLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry with Go
// runtime and process collectors is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:          cfg,
		registry:        registry,
		contentMetrics:  NewContentMetrics(namespace, registry),
		locationMetrics: NewLocationMetrics(namespace, registry),
		requestMetrics:  NewRequestMetrics(namespace, registry),
		categoryLimiter: NewCardinalityLimiter(maxCategories),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordContentCheck records a content check.
//
// Parameters:
//   - operation: "check" or "validate"
//   - violation: whether a prohibited term was found
//   - category: the matched term's category (ignored when clean)
//   - duration: time spent normalizing and matching
func (c *Collector) RecordContentCheck(operation string, violation bool, category string, duration time.Duration) {
	if !c.enabled() {
		return
	}

	result := "clean"
	if violation {
		result = "violation"
		if !c.categoryLimiter.Allow(category) {
			category = "other"
		}
		c.contentMetrics.RecordViolation(category)
	}
	c.contentMetrics.RecordCheck(operation, result, duration)
}

// ObserveReload records a dictionary reload attempt. It satisfies
// safety.ReloadObserver.
func (c *Collector) ObserveReload(success bool, terms int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.contentMetrics.RecordReload(success, duration)
	c.contentMetrics.SetTerms(terms)
}

// SetDictionaryTerms records the number of terms currently served.
func (c *Collector) SetDictionaryTerms(terms int) {
	if !c.enabled() {
		return
	}
	c.contentMetrics.SetTerms(terms)
}

// RecordLocationOffset records a public location computation.
//
// Parameters:
//   - status: "success" or "invalid_argument"
//   - duration: computation time
func (c *Collector) RecordLocationOffset(status string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.locationMetrics.RecordOffset(status, duration)
}

// RecordHTTPRequest records a served HTTP request.
func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.requestMetrics.RecordRequest(route, method, status, duration)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label value is allowed. Returns true if the value
// already exists or if we haven't reached the cardinality limit yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
