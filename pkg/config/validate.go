package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/robfig/cron/v3"

	"mealshare/trustcore/pkg/safety"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateLocation(&cfg.Location)...)
	errs = append(errs, validateSafety(&cfg.Safety)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "read timeout must be positive"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "write timeout must be positive"})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.idle_timeout", Message: "idle timeout must be positive"})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.shutdown_timeout", Message: "shutdown timeout must be positive"})
	}

	if cfg.MaxHeaderBytes < 0 || cfg.MaxHeaderBytes > 10*1024*1024 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be between 0 and 10MB",
		})
	}
	if cfg.MaxBodyBytes < 0 || cfg.MaxBodyBytes > 10*1024*1024 {
		errs = append(errs, FieldError{
			Field:   "server.max_body_bytes",
			Message: "max body bytes must be between 0 and 10MB",
		})
	}

	return errs
}

func validateLocation(cfg *LocationConfig) []FieldError {
	var errs []FieldError

	r := cfg.MaxOffsetDegrees
	switch {
	case math.IsNaN(r) || math.IsInf(r, 0) || r <= 0:
		errs = append(errs, FieldError{
			Field:   "location.max_offset_degrees",
			Message: fmt.Sprintf("must be a positive finite number, got %v", r),
		})
	case r > 1:
		// One degree of latitude is about 111 km; anything larger no longer
		// describes a pickup area.
		errs = append(errs, FieldError{
			Field:   "location.max_offset_degrees",
			Message: fmt.Sprintf("must not exceed 1 degree, got %v", r),
		})
	}

	return errs
}

func validateSafety(cfg *SafetyConfig) []FieldError {
	var errs []FieldError

	if _, err := safety.ParseMatcherKind(cfg.Matcher); err != nil {
		errs = append(errs, FieldError{Field: "safety.matcher", Message: err.Error()})
	}

	for i, t := range cfg.Terms {
		if safety.Normalize(t.Text) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("safety.terms[%d].text", i),
				Message: fmt.Sprintf("term %q is empty after normalization", t.Text),
			})
		}
	}

	if cfg.Watch && cfg.DictionaryPath == "" {
		errs = append(errs, FieldError{
			Field:   "safety.watch",
			Message: "watching requires safety.dictionary_path",
		})
	}
	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "safety.debounce_interval",
			Message: "debounce interval must be positive",
		})
	}

	if cfg.ReloadSchedule != "" {
		if cfg.DictionaryPath == "" {
			errs = append(errs, FieldError{
				Field:   "safety.reload_schedule",
				Message: "scheduled reloads require safety.dictionary_path",
			})
		}
		if _, err := cron.ParseStandard(cfg.ReloadSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "safety.reload_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.ReloadSchedule, err),
			})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	if !strings.HasPrefix(cfg.Health.LivenessPath, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.liveness_path",
			Message: "liveness path must start with /",
		})
	}
	if !strings.HasPrefix(cfg.Health.ReadinessPath, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.readiness_path",
			Message: "readiness path must start with /",
		})
	}

	return errs
}
