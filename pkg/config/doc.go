// Package config provides configuration management for the trust core
// service.
//
// This package handles loading and validating configuration from YAML files
// with environment variable overrides. The loaded *Config is passed
// explicitly to the components that need it; there is no process-global
// instance.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("trustcore.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("trustcore.yaml")
//
// An empty path yields the defaults.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention TRUSTCORE_SECTION_FIELD.
// For example:
//
//   - TRUSTCORE_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - TRUSTCORE_LOCATION_MAX_OFFSET_DEGREES overrides location.max_offset_degrees
//   - TRUSTCORE_SAFETY_DICTIONARY_PATH overrides safety.dictionary_path
//
// A .env file in the working directory is read first. It never overrides
// variables that are already set.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	server:
//	  listen_address: "0.0.0.0:8090"
//
//	location:
//	  max_offset_degrees: 0.003
//
//	safety:
//	  dictionary_path: /etc/trustcore/terms.yaml
//	  watch: true
//	  terms:
//	    - text: "spamfood"
//	      category: custom
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
