// Package validation provides field-tagged input validation errors shared by
// the domain services.
package validation

import "fmt"

// Error describes a request input that failed validation. Field names the
// offending input field; it may be empty for errors that are not tied to a
// single field.
type Error struct {
	Field   string
	Message string
}

// New creates a validation Error for the given field.
func New(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
