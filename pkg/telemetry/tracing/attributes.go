package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Custom attribute keys use the "trustcore.*" namespace. Span attributes
// never carry user text, coordinates, or location keys: content spans record
// the outcome and category only, location spans record the status only.
const (
	// Request attributes
	AttrRequestID = "trustcore.request_id"
	AttrRoute     = "trustcore.route"

	// Content attributes
	AttrOperation  = "trustcore.content.operation"
	AttrResult     = "trustcore.content.result"
	AttrCategory   = "trustcore.content.category"
	AttrTextLength = "trustcore.content.length"

	// Term set attributes
	AttrMatcher        = "trustcore.termset.matcher"
	AttrTermCount      = "trustcore.termset.terms"
	AttrTermSetVersion = "trustcore.termset.version"

	// Location attributes
	AttrLocationStatus = "trustcore.location.status"

	// Error attributes
	AttrErrorKind    = "trustcore.error.kind"
	AttrErrorField   = "trustcore.error.field"
	AttrErrorMessage = "error.message"
)

// SetRequestAttributes sets request-scoped attributes on a span.
func SetRequestAttributes(span trace.Span, requestID, route string) {
	attrs := []attribute.KeyValue{attribute.String(AttrRoute, route)}
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	span.SetAttributes(attrs...)
}

// SetContentAttributes records the outcome of a content check. textLength
// is the combined length in bytes of the checked text.
//
//	SetContentAttributes(span, "validate", true, "profanity", 42)
func SetContentAttributes(span trace.Span, operation string, violation bool, category string, textLength int) {
	result := "clean"
	if violation {
		result = "violation"
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrOperation, operation),
		attribute.String(AttrResult, result),
		attribute.Int(AttrTextLength, textLength),
	}
	if violation && category != "" {
		attrs = append(attrs, attribute.String(AttrCategory, category))
	}
	span.SetAttributes(attrs...)
}

// SetTermSetAttributes describes the term set snapshot a check ran against.
func SetTermSetAttributes(span trace.Span, matcher string, terms int, version uint64) {
	span.SetAttributes(
		attribute.String(AttrMatcher, matcher),
		attribute.Int(AttrTermCount, terms),
		attribute.Int64(AttrTermSetVersion, int64(version)),
	)
}

// SetLocationAttributes records the outcome of a public location
// computation.
func SetLocationAttributes(span trace.Span, status string) {
	span.SetAttributes(attribute.String(AttrLocationStatus, status))
}

// SetArgumentError marks the span as failed because of an invalid argument.
// Only the field name is recorded, never the offending value.
func SetArgumentError(span trace.Span, field string) {
	SetErrorKind(span, "invalid_argument")
	if field != "" {
		span.SetAttributes(attribute.String(AttrErrorField, field))
	}
}

// AddEvent adds a named event to the span.
//
//	AddEvent(span, "termset.reloaded", attribute.Int(AttrTermCount, 120))
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
