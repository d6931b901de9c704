package browser

import (
	"errors"
	"fmt"
)

// Kind categorizes a surface failure.
type Kind string

const (
	// KindTimeout indicates the element exists but never reached the
	// required state before the deadline.
	KindTimeout Kind = "TIMEOUT"

	// KindNotFound indicates no element matched the selector before the
	// deadline.
	KindNotFound Kind = "NOT_FOUND"

	// KindInteraction covers every other driver failure (detached element,
	// closed page, navigation error).
	KindInteraction Kind = "INTERACTION"

	// KindAssertion is reported for content mismatches. It is the Kind of
	// AssertionError and never appears on *Error.
	KindAssertion Kind = "ASSERTION"
)

// Error is returned by Surface implementations when an operation fails.
type Error struct {
	Op       string // surface operation, e.g. "click"
	Selector string // selector or URL the operation targeted
	Kind     Kind
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Selector == "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %q: %s: %v", e.Op, e.Selector, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AssertionError reports page content that did not match expectations.
type AssertionError struct {
	Check    string // what was being verified
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s: expected %s, got %s", e.Check, e.Expected, e.Actual)
}

// KindOf classifies any error produced while driving a page.
// Errors not originating from this package report KindInteraction.
func KindOf(err error) Kind {
	var ae *AssertionError
	if errors.As(err, &ae) {
		return KindAssertion
	}
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInteraction
}

// IsTimeout reports whether err is a surface timeout.
func IsTimeout(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Kind == KindTimeout
}

// IsNotFound reports whether err is a surface not-found failure.
func IsNotFound(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Kind == KindNotFound
}

// IsAssertion reports whether err is a content mismatch.
func IsAssertion(err error) bool {
	var ae *AssertionError
	return errors.As(err, &ae)
}
