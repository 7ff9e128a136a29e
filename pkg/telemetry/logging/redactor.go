package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redacted replaces values of sensitive keys.
const Redacted = "[REDACTED]"

// Common pattern names.
const (
	PatternCoordinates = "coordinates"
	PatternEmail       = "email"
	PatternPhone       = "phone"
	PatternAddress     = "address"
	PatternBearerToken = "bearer_token"
)

// Redactor removes true locations and PII from log attributes.
//
// Values of sensitive keys (coordinates, addresses, location keys, secrets)
// are replaced entirely. Other string values are scanned for coordinate
// pairs, email addresses, phone numbers, and street addresses.
type Redactor struct {
	patterns []redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// sensitiveKeys are matched against the lowercased attribute key.
var sensitiveKeys = map[string]bool{
	"lat":           true,
	"lng":           true,
	"lon":           true,
	"latitude":      true,
	"longitude":     true,
	"true_lat":      true,
	"true_lng":      true,
	"coordinates":   true,
	"point":         true,
	"true_point":    true,
	"address":       true,
	"street":        true,
	"location_key":  true,
	"email":         true,
	"phone":         true,
	"password":      true,
	"secret":        true,
	"token":         true,
	"authorization": true,
}

// opaqueKeys carry generated identifiers and are never scanned.
var opaqueKeys = map[string]bool{
	"request_id": true,
	"trace_id":   true,
	"span_id":    true,
}

// NewRedactor creates a Redactor with the built-in patterns.
func NewRedactor() *Redactor {
	r := &Redactor{}
	// Coordinate pairs run first; the phone pattern would otherwise eat
	// their digits.
	r.add(PatternCoordinates, `-?\d{1,3}\.\d+\s*[,;/ ]\s*-?\d{1,3}\.\d+`, "[coordinates]")
	r.add(PatternEmail, `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`, "[email]")
	r.add(PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***")
	r.add(PatternAddress, `(?i)\b[\p{L}.-]*(straße|strasse|str\.|weg|platz|allee|gasse|ring|damm|street|road|avenue)\s+\d+\s?[a-z]?\b`, "[address]")
	r.add(PatternPhone, `(?:\+|\b0)\d{1,4}[\s\-/()]*\d{2,}[\d\s\-/()]{4,}\d`, "[phone]")
	return r
}

func (r *Redactor) add(name, expr, replacement string) {
	r.patterns = append(r.patterns, redactPattern{
		name:        name,
		regex:       regexp.MustCompile(expr),
		replacement: replacement,
	})
}

// RedactString redacts sensitive substrings from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

var defaultRedactor = NewRedactor()

// RedactString redacts value with the built-in patterns. Use it for strings
// that leave the process outside the logger, such as span status messages.
func RedactString(value string) string {
	return defaultRedactor.RedactString(value)
}

// IsSensitiveKey reports whether values logged under key are always
// replaced.
func (r *Redactor) IsSensitiveKey(key string) bool {
	return sensitiveKeys[strings.ToLower(key)]
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook.
func (r *Redactor) ReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	// Built-in keys (time, level, msg, source) are left alone.
	if len(groups) == 0 {
		switch a.Key {
		case slog.TimeKey, slog.LevelKey, slog.MessageKey, slog.SourceKey:
			return a
		}
	}

	if r.IsSensitiveKey(a.Key) {
		return slog.String(a.Key, Redacted)
	}
	if opaqueKeys[a.Key] {
		return a
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, r.RedactString(a.Value.String()))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, r.RedactString(err.Error()))
		}
	}
	return a
}
