package booking

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrSlotUnavailable   = errors.New("requested time slot is not available")
	ErrLockNotAcquired   = errors.New("booking lock not acquired")
	ErrInvalidTransition = errors.New("invalid appointment status transition")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
