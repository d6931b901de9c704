package pages

import "fmt"

// ValidationError reports workflow input a page object refuses to act on,
// such as an empty category path.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
