package config

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMode is wrapped by ConfigurationError when a gait mode is not in the table.
	ErrUnknownMode = errors.New("unknown gait mode")
	// ErrUnknownJoint is wrapped by ConfigurationError when a joint name is not recognised.
	ErrUnknownJoint = errors.New("unknown joint")
)

// ConfigurationError reports an invalid or missing configuration value.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ValidationError reports input data that cannot be analyzed as given,
// for example left and right series of different lengths.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}
