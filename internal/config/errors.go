package config

import (
	"errors"
	"fmt"
)

// Sentinel causes for configuration failures.
var (
	ErrMissingPolicy      = errors.New("policy path required")
	ErrMissingCredentials = errors.New("reasoning service credentials required")
	ErrInvalid            = errors.New("invalid configuration")
)

// ConfigurationError reports a configuration problem that prevents any
// case from being processed. Field names the offending TOML key.
type ConfigurationError struct {
	Field string
	Cause error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %v", e.Field, e.Cause)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// Invalid wraps err as a ConfigurationError for field.
func Invalid(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ConfigurationError{Field: field, Cause: err}
}
