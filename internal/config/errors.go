package config

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes settings errors.
type ErrorCode string

const (
	// ErrCodeRead indicates the settings file could not be read.
	ErrCodeRead ErrorCode = "E_CONFIG_READ"

	// ErrCodeParse indicates malformed YAML or an unknown key.
	ErrCodeParse ErrorCode = "E_CONFIG_PARSE"

	// ErrCodeMissingSection indicates a required top-level section is absent.
	ErrCodeMissingSection ErrorCode = "E_MISSING_SECTION"

	// ErrCodeSchema indicates a value that violates the settings schema.
	ErrCodeSchema ErrorCode = "E_CONFIG_SCHEMA"

	// ErrCodeEnv indicates an environment override that cannot be applied.
	ErrCodeEnv ErrorCode = "E_CONFIG_ENV"
)

// Error is a fatal settings problem. It aborts a run before any scenario
// starts.
type Error struct {
	Code    ErrorCode
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Path)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is a settings error.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// CodeOf returns the code of a settings error, or "" for other errors.
func CodeOf(err error) ErrorCode {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
