package location

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is matched (via errors.Is) by every error returned for
// malformed obfuscation inputs. It indicates a bug in the caller.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError describes which input was rejected.
type ArgumentError struct {
	// Field is the name of the rejected argument (e.g., "key", "max_offset_degrees").
	Field string

	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrInvalidArgument.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalidArgument(field, format string, args ...any) error {
	return &ArgumentError{Field: field, Message: fmt.Sprintf(format, args...)}
}
