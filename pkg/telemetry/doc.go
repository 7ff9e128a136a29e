// Package telemetry groups the observability packages used by the trust core.
//
// # Components
//
//   - logging: structured slog logging with coordinate and PII redaction
//   - metrics: Prometheus counters and histograms for content checks,
//     dictionary reloads, public location computations, and HTTP requests
//   - tracing: OpenTelemetry spans exported over OTLP gRPC
//   - health: liveness and readiness probes backed by the active term set
//
// # Usage
//
//	logger := logging.New(logging.Config{Level: cfg.Telemetry.Logging.Level})
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//
//	checker := health.New(health.DefaultCheckTimeout)
//	checker.RegisterCheck("termset", health.TermSetCheck(store))
//
// None of the components record raw coordinates, location keys, or the text
// that was checked.
package telemetry
