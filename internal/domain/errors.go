package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidConfig         = errors.New("invalid configuration")
	ErrGeneration            = errors.New("generation service failed")
	ErrGenerationUnavailable = errors.New("generation service unavailable")
)

// ValidationError is a user-facing rejection. It unwraps to its sentinel so
// callers can branch with errors.Is.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// InputError builds a ValidationError for rejected input text.
func InputError(format string, args ...any) *ValidationError {
	return &ValidationError{Err: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// ConfigError builds a ValidationError for rejected tunables.
func ConfigError(format string, args ...any) *ValidationError {
	return &ValidationError{Err: ErrInvalidConfig, Message: fmt.Sprintf(format, args...)}
}

// UserMessage returns the message to show a user for err, or "" when err is
// not a validation failure.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return ""
}
