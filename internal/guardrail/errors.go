package guardrail

import (
	"errors"
	"fmt"
)

// ConfigurationError is returned when a guardrail configuration or
// reconfiguration is rejected. It is never retryable and no state is applied.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// ConfigErrorf formats a ConfigurationError.
func ConfigErrorf(format string, args ...any) error {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// ViolationError is returned by fail-severity outcomes for callers that must
// be aborted. Message is meant for the end user; RedactedMessage is safe
// for logs.
type ViolationError struct {
	Guardrail       string
	Message         string
	RedactedMessage string
}

func (e *ViolationError) Error() string {
	return e.Message
}

// AsViolation extracts a ViolationError from err.
func AsViolation(err error) (*ViolationError, bool) {
	var ve *ViolationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
