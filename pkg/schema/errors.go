package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Violation represents a single broken invariant in a journey definition.
type Violation struct {
	Field  string // Path of the offending field, e.g. "transitions[2].to_state"
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Reason)
}

// ValidationError aggregates every violation found while building a journey.
type ValidationError struct {
	Violations []*Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "invalid journey: " + e.Violations[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid journey: %d validation errors:\n", len(e.Violations))
	for i, v := range e.Violations {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, v.Error())
	}
	return sb.String()
}

// Messages returns one message per violation, in detection order.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return msgs
}

// Violations returns all violations if err wraps a ValidationError.
// Otherwise returns nil.
func Violations(err error) []*Violation {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Violations
	}
	return nil
}

// Messages returns the violation messages if err wraps a ValidationError.
func Messages(err error) []string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Messages()
	}
	return nil
}
