// Package common provides errors, retry and logging helpers shared across the
// application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Source errors.
	ErrNotFound = errors.New("not found")

	// Input errors.
	ErrInvalidPeriod = errors.New("invalid period")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Run errors.
	ErrCancelled = errors.New("cancelled by operator")
)

// UserError represents an error that should be shown to the operator.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new operator-facing error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
