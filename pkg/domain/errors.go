package domain

import (
	"errors"
	"fmt"
)

// ErrJourneyNotFound is returned when a journey ID cannot be found in the store.
var ErrJourneyNotFound = errors.New("journey not found")

// ErrUsage matches every UsageError through errors.Is.
var ErrUsage = errors.New("usage error")

// UsageError reports a caller mistake, such as a non-positive cohort size or a
// journey without states. Retrying with the same input yields the same error.
type UsageError struct {
	Op     string
	Reason string
}

// NewUsageError creates a UsageError for the given operation.
func NewUsageError(op, format string, args ...any) *UsageError {
	return &UsageError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

func (e *UsageError) Error() string {
	if e.Op == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Is reports whether target is ErrUsage.
func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}
