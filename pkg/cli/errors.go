package cli

import (
	"errors"
	"fmt"

	"mealshare/trustcore/pkg/config"
)

// Exit codes returned by the trustcore command.
const (
	ExitOK        = 0
	ExitViolation = 1
	ExitConfig    = 2
	ExitFailure   = 3
)

// ErrViolation is returned by commands that found prohibited content. The
// command has already printed its result, so callers only map it to
// ExitViolation.
var ErrViolation = errors.New("prohibited content found")

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config error: " + e.Message
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// WrapConfigError converts a configuration load error into a ConfigError.
// The first field error of a config.ValidationError names the field.
func WrapConfigError(err error) error {
	if err == nil {
		return nil
	}
	var verr config.ValidationError
	if errors.As(err, &verr) && len(verr.Errors) > 0 {
		return &ConfigError{Field: verr.Errors[0].Field, Message: err.Error()}
	}
	return &ConfigError{Message: err.Error()}
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	var cfgErr *ConfigError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrViolation):
		return ExitViolation
	case errors.As(err, &cfgErr):
		return ExitConfig
	default:
		return ExitFailure
	}
}
