package tracing

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// W3C Trace Context Propagation
//
// Callers of the sidecar (typically the listing service) may send a
// traceparent header so that content checks appear inside their traces:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// Format: version-trace_id-parent_id-trace_flags

// Propagator returns the configured text map propagator.
func Propagator() propagation.TextMapPropagator {
	return otel.GetTextMapPropagator()
}

// Extract extracts trace context from HTTP headers. If no trace context is
// found, the original context is returned.
func Extract(ctx context.Context, headers http.Header) context.Context {
	return Propagator().Extract(ctx, propagation.HeaderCarrier(headers))
}

// HTTPMiddleware extracts trace context from incoming requests, starts a
// server span named after route, and echoes the trace ID in the X-Trace-ID
// response header. A panic in next marks the span failed and is re-raised
// for the recovery middleware.
func HTTPMiddleware(tracer *Tracer, route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := Extract(r.Context(), r.Header)
		ctx, span := tracer.Start(ctx, r.Method+" "+route)
		defer span.End()
		defer func() {
			if v := recover(); v != nil {
				if v != http.ErrAbortHandler {
					SetError(span, fmt.Errorf("panic: %v", v))
				}
				panic(v)
			}
		}()

		if sc := span.SpanContext(); sc.IsValid() {
			w.Header().Set("X-Trace-ID", sc.TraceID().String())
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
