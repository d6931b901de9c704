package dataset

import (
	"errors"
	"fmt"
)

// ConfigErrorCode categorizes workbook errors.
type ConfigErrorCode string

const (
	// ErrCodeMissingFile indicates the workbook path does not exist.
	ErrCodeMissingFile ConfigErrorCode = "E_MISSING_FILE"

	// ErrCodeUnreadable indicates the workbook exists but cannot be read.
	ErrCodeUnreadable ConfigErrorCode = "E_UNREADABLE"

	// ErrCodeMissingTable indicates a named sheet is absent.
	ErrCodeMissingTable ConfigErrorCode = "E_MISSING_TABLE"

	// ErrCodeEmptyTable indicates a sheet has no data rows.
	ErrCodeEmptyTable ConfigErrorCode = "E_EMPTY_TABLE"
)

// ConfigError is a fatal data source problem. The run aborts before any
// scenario starts and the error is never retried.
type ConfigError struct {
	Code    ConfigErrorCode
	Path    string
	Sheet   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Sheet != "" {
		msg += fmt.Sprintf(" (sheet=%s)", e.Sheet)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SchemaError reports a sheet whose shape does not match its declared
// schema. Row is the 1-based spreadsheet row; the header is row 1 and a
// header problem reports row 1.
type SchemaError struct {
	Sheet   string
	Row     int
	Column  string
	Message string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("E_SCHEMA: %s (sheet=%s, row=%d, column=%s)", e.Message, e.Sheet, e.Row, e.Column)
}

// IsConfigError reports whether err is a workbook-level error.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsSchemaError reports whether err is a sheet shape error.
// Uses errors.As to handle wrapped errors.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
