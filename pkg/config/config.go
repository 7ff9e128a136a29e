package config

import (
	"time"

	"mealshare/trustcore/pkg/safety"
)

// Config is the root configuration structure for the trust core service.
// It contains the HTTP sidecar, location obfuscation, content safety, and
// telemetry sections.
type Config struct {
	// Server contains HTTP sidecar configuration including listen address,
	// timeouts, and request size limits.
	Server ServerConfig `yaml:"server"`

	// Location contains location obfuscation configuration.
	Location LocationConfig `yaml:"location"`

	// Safety contains the prohibited-term dictionary and its reload settings.
	Safety SafetyConfig `yaml:"safety"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP sidecar.
type ServerConfig struct {
	// ListenAddress is the address the server binds to.
	// Default: "127.0.0.1:8090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request when
	// keep-alives are enabled.
	// Default: 60s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header.
	// Default: 65536
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits request bodies. Listing texts are short.
	// Default: 65536
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// LocationConfig contains location obfuscation configuration.
type LocationConfig struct {
	// MaxOffsetDegrees is the maximum displacement per axis in degrees.
	// 0.003 degrees is roughly 330 m of latitude.
	// Default: 0.003
	MaxOffsetDegrees float64 `yaml:"max_offset_degrees"`
}

// SafetyConfig contains content safety configuration.
type SafetyConfig struct {
	// DictionaryPath is the YAML dictionary file. Empty selects the built-in
	// English and German dictionary.
	DictionaryPath string `yaml:"dictionary_path"`

	// Terms are extra prohibited terms appended after the dictionary.
	Terms []TermConfig `yaml:"terms"`

	// Matcher selects the search strategy.
	// Options: "aho-corasick", "substring"
	// Default: "aho-corasick"
	Matcher string `yaml:"matcher"`

	// Watch reloads the dictionary when the file changes.
	// Requires DictionaryPath.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period before a file change triggers a
	// reload.
	// Default: 250ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// ReloadSchedule is an optional cron expression for periodic reloads,
	// e.g. "*/10 * * * *" or "@every 10m". Requires DictionaryPath.
	ReloadSchedule string `yaml:"reload_schedule"`

	// ExposeTerms includes the matched term in HTTP responses. Leave it off
	// for public-facing deployments so the term list cannot be probed.
	// Default: false
	ExposeTerms bool `yaml:"expose_terms"`
}

// TermConfig is an inline prohibited term.
type TermConfig struct {
	Text     string `yaml:"text"`
	Category string `yaml:"category"`
	Language string `yaml:"language"`
}

// Source converts the section into a safety.Source. Call it on a validated
// configuration.
func (s SafetyConfig) Source() safety.Source {
	extra := make([]safety.Term, 0, len(s.Terms))
	for _, t := range s.Terms {
		category := t.Category
		if category == "" {
			category = safety.CategoryCustom
		}
		extra = append(extra, safety.Term{Text: t.Text, Category: category, Language: t.Language})
	}
	return safety.Source{
		DictionaryPath: s.DictionaryPath,
		ExtraTerms:     extra,
		Matcher:        safety.MatcherKind(s.Matcher),
	}
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "trustcore"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "trustcore"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS for the collector connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for trace exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`
}
