package config

import (
	"errors"
	"fmt"
)

// ErrorKind classifies configuration failures.
type ErrorKind string

const (
	// ErrorNotFound indicates the configuration file does not exist or is unreadable.
	ErrorNotFound ErrorKind = "not_found"

	// ErrorInvalidFormat indicates the file exists but is not valid YAML.
	ErrorInvalidFormat ErrorKind = "invalid_format"

	// ErrorMissingField indicates a required key or field is absent.
	ErrorMissingField ErrorKind = "missing_field"
)

// Error is a classified configuration error. Every configuration failure is
// fatal to the run; no partial configuration is ever returned.
type Error struct {
	// Kind is the error classification.
	Kind ErrorKind

	// Path is the configuration file path.
	Path string

	// Field is the missing key, set only for ErrorMissingField.
	Field string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case ErrorNotFound:
		return fmt.Sprintf("config file %q not found", e.Path)
	case ErrorInvalidFormat:
		return fmt.Sprintf("config file %q is not valid YAML: %v", e.Path, e.Err)
	case ErrorMissingField:
		return fmt.Sprintf("config file %q is missing required key %q", e.Path, e.Field)
	default:
		return fmt.Sprintf("config file %q: %v", e.Path, e.Err)
	}
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsMissingField reports whether err is a config error for a missing key,
// and returns the key name when it is.
func IsMissingField(err error) (string, bool) {
	var ce *Error
	if errors.As(err, &ce) && ce.Kind == ErrorMissingField {
		return ce.Field, true
	}
	return "", false
}
