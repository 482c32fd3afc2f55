package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the referenced quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrUserNotFound indicates the referenced user has never registered.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when registering an already-known identity.
	ErrUserExists = errors.New("user already exists")
	// ErrNotOwner is returned when a mutating request comes from someone other
	// than the quiz's creator.
	ErrNotOwner = errors.New("user not authorized")
)

// ValidationError reports malformed input. It is always detected before any
// mutation, so a validation failure leaves state unchanged.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// Validationf builds a ValidationError with a formatted reason.
func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
