package common

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested entity does not exist.
// Handlers map it to HTTP 404.
var ErrNotFound = errors.New("not found")

// ValidationError describes rejected client input. Handlers map it to
// HTTP 400 and its message is safe to return to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a formatted message
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
