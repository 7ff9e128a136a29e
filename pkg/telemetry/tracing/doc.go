// Package tracing provides OpenTelemetry distributed tracing for the trust
// core sidecar.
//
// # Overview
//
// Spans are exported over OTLP gRPC. Incoming W3C Trace Context headers are
// honored so that content checks and public location computations appear
// inside the caller's trace:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// # Sampling
//
// Root spans are sampled by trace ID ratio (telemetry.tracing.sample_ratio).
// Child spans follow their parent's decision.
//
// # Privacy
//
// Span attributes never carry listing text, coordinates, or location keys.
// Content spans record the operation, outcome, and category. Error messages
// pass through the log redactor, and argument errors are recorded by field
// name only (see SetArgumentError).
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "content.validate")
//	defer span.End()
//	tracing.SetContentAttributes(span, "validate", res.Violation, res.Category, n)
package tracing
