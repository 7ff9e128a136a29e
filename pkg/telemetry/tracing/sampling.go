package tracing

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// newSampler returns a parent-based sampler that samples root spans by trace
// ID ratio.
//
// The decision is made once at the root and propagated to every child span,
// so a trace is either recorded entirely or not at all. A ratio of 1 or more
// samples everything and a ratio of 0 or less samples nothing.
//
//	telemetry:
//	  tracing:
//	    sample_ratio: 0.1  # Sample 10% of traces
func newSampler(ratio float64) sdktrace.Sampler {
	var root sdktrace.Sampler
	switch {
	case ratio >= 1:
		root = sdktrace.AlwaysSample()
	case ratio <= 0:
		root = sdktrace.NeverSample()
	default:
		root = sdktrace.TraceIDRatioBased(ratio)
	}
	return sdktrace.ParentBased(root)
}
