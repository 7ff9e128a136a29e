package server

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"mealshare/trustcore/pkg/telemetry/logging"
	"mealshare/trustcore/pkg/telemetry/tracing"
)

// RequestIDHeader is the HTTP header carrying the request ID.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds client-supplied request IDs.
const maxRequestIDLength = 128

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader captures the status code before writing.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

// Write ensures WriteHeader is called if not already done.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// requestIDMiddleware propagates the caller's X-Request-ID or assigns a new
// UUID, and stores it in the request context for logging.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)
		ctx := logging.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validRequestID accepts short printable ASCII IDs so that a client cannot
// inject arbitrary content into logs.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// loggingMiddleware logs one line per completed request. Only the method,
// path, status, and latency are logged; request bodies never are.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		ctx := r.Context()
		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case rw.statusCode >= 500:
			s.logger.ErrorContext(ctx, "request completed", args...)
		case rw.statusCode >= 400 && rw.statusCode != http.StatusUnprocessableEntity:
			s.logger.WarnContext(ctx, "request completed", args...)
		default:
			s.logger.DebugContext(ctx, "request completed", args...)
		}
	})
}

// recoveryMiddleware turns handler panics into a 500 JSON error without
// exposing internal details to the client.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				s.logger.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, ErrorTypeInternal,
					"An internal error occurred. Please try again later.")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// route wraps an API handler with method filtering, a body size limit, a
// server span, and request metrics. route is the registered pattern and is
// used as the metric label and span name.
func (s *Server) route(route, method string, h http.HandlerFunc) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)

		ctx := r.Context()
		if traceID := tracing.TraceID(ctx); traceID != "" {
			ctx = logging.WithTraceID(ctx, traceID)
		}
		tracing.SetRequestAttributes(tracing.SpanFromContext(ctx), logging.GetRequestID(ctx), route)

		if r.Method != method {
			rw.Header().Set("Allow", method)
			writeError(rw, http.StatusMethodNotAllowed, ErrorTypeMethodNotAllowed, "method not allowed")
		} else {
			r.Body = http.MaxBytesReader(rw, r.Body, s.config.Server.MaxBodyBytes)
			h(rw, r.WithContext(ctx))
		}

		s.collector.RecordHTTPRequest(route, r.Method, rw.statusCode, time.Since(start))
	})
	return tracing.HTTPMiddleware(s.tracer, route, inner)
}
