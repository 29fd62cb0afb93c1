// Package services defines the business logic for form submissions. This
// file centralizes the service-level error types so they can be consistently
// returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer, never here.
package services

import "strings"

// Input length limits enforced on submissions. Limits are counted in
// characters (runes), matching what a user sees in the form.
const (
	MaxNameLen    = 100
	MaxEmailLen   = 100
	MaxMessageLen = 1000
)

// Violation messages surfaced to the user when a field fails validation.
const (
	MsgNameRequired   = "Name is required."
	MsgNameTooLong    = "Name must be less than 100 characters."
	MsgEmailRequired  = "Email is required."
	MsgEmailTooLong   = "Email must be less than 100 characters."
	MsgEmailInvalid   = "Please enter a valid email address."
	MsgMessageTooLong = "Message must be less than 1000 characters."
)

// ValidationError carries every rule violation found in a submission so the
// form can surface all of them at once rather than failing one at a time.
type ValidationError struct {
	Violations []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "invalid submission: " + strings.Join(e.Violations, " ")
}
