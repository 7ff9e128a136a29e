// Package metrics provides Prometheus metrics collection for the trust core.
//
// # Metrics Categories
//
//   - Content Metrics: checks by result, violations by category, dictionary
//     size and reloads
//   - Location Metrics: public location computations by status
//   - HTTP Metrics: sidecar requests by route and status code
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	collector.RecordContentCheck("validate", true, "profanity", 40*time.Microsecond)
//	collector.RecordLocationOffset("success", 300*time.Nanosecond)
//
//	// The collector observes dictionary reloads
//	reloader := safety.NewReloader(source, store, collector, logger)
//
//	http.Handle("/metrics", collector.Handler())
//
// Coordinates, location keys, and matched terms are never used as label
// values.
package metrics
