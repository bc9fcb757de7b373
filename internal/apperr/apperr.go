// Package apperr defines the error vocabulary shared by the group directory
// and the wagering engine. Handlers translate these to Connect codes.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSignedIn is returned when an operation is called without an actor.
	ErrNotSignedIn = errors.New("not signed in")

	// ErrForbidden is returned when the actor lacks the role the operation needs.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when a referenced group, bet, invite or debt is missing.
	ErrNotFound = errors.New("not found")
)

// ValidationError is a business-rule violation. Reason is safe to show to users.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Validation returns a *ValidationError with the given reason.
func Validation(reason string) error {
	return &ValidationError{Reason: reason}
}

// Validationf formats a *ValidationError.
func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
