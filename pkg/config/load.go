package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "TRUSTCORE_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// An empty path yields the defaults. The configuration is not modified by
// environment variables; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention TRUSTCORE_SECTION_FIELD (e.g., TRUSTCORE_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load a .env file from the working directory, if present
// 2. Load YAML from file
// 3. Apply default values
// 4. Apply environment variable overrides
// 5. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if errs := applyEnvOverrides(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid environment override: %w", ValidationError{Errors: errs})
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv exports the variables of a dotenv file into the process
// environment. Variables already set are not overwritten and a missing file
// is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %q: %w", path, err)
	}
	return nil
}

// envOverrides accumulates parse failures while applying overrides.
type envOverrides struct {
	errs []FieldError
}

func (e *envOverrides) str(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func (e *envOverrides) boolean(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			e.fail(name, val, "boolean")
			return
		}
		*dst = b
	}
}

func (e *envOverrides) duration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			e.fail(name, val, "duration")
			return
		}
		*dst = d
	}
}

func (e *envOverrides) float(name string, dst *float64) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			e.fail(name, val, "number")
			return
		}
		*dst = f
	}
}

func (e *envOverrides) fail(name, val, kind string) {
	e.errs = append(e.errs, FieldError{
		Field:   EnvPrefix + name,
		Message: fmt.Sprintf("cannot parse %q as %s", val, kind),
	})
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format TRUSTCORE_SECTION_FIELD. Values that
// do not parse are reported rather than ignored.
func applyEnvOverrides(cfg *Config) []FieldError {
	var e envOverrides

	// Server overrides
	e.str("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	e.duration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	e.duration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	e.duration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Location overrides
	e.float("LOCATION_MAX_OFFSET_DEGREES", &cfg.Location.MaxOffsetDegrees)

	// Safety overrides
	e.str("SAFETY_DICTIONARY_PATH", &cfg.Safety.DictionaryPath)
	e.str("SAFETY_MATCHER", &cfg.Safety.Matcher)
	e.boolean("SAFETY_WATCH", &cfg.Safety.Watch)
	e.duration("SAFETY_DEBOUNCE_INTERVAL", &cfg.Safety.DebounceInterval)
	e.str("SAFETY_RELOAD_SCHEDULE", &cfg.Safety.ReloadSchedule)
	e.boolean("SAFETY_EXPOSE_TERMS", &cfg.Safety.ExposeTerms)

	// Telemetry overrides
	e.str("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	e.str("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	e.boolean("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	e.str("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	e.boolean("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	e.str("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	e.float("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)
	e.boolean("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)

	return e.errs
}
