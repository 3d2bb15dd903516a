package order

import (
	"errors"
	"fmt"
)

var (
	// -- Resource State --
	ErrOrderNotFound = errors.New("order not found")

	// -- Business Rules --
	ErrInvalidTransition         = errors.New("invalid status transition")
	ErrCancellationNotAllowed    = errors.New("order can no longer be cancelled")
	ErrCancellationWindowExpired = errors.New("cancellation window has expired")
	ErrModificationNotAllowed    = errors.New("order can no longer be modified")
	ErrModificationWindowExpired = errors.New("modification window has expired")

	// -- Concurrency --
	ErrStatusConflict = errors.New("order was updated concurrently")
)

// ValidationError reports a missing or malformed input field. It is
// returned before any state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
