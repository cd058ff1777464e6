package domain

import (
	"errors"
	"fmt"
)

// ErrForbidden matches every ForbiddenError via errors.Is.
var ErrForbidden = errors.New("forbidden")

// ValidationError is a precondition failure on caller-supplied input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// InvalidStateError is an attempted transition from a terminal or wrong state.
type InvalidStateError struct {
	Entity string
	Op     string
	State  string
	Reason string
}

func (e InvalidStateError) Error() string {
	msg := fmt.Sprintf("%s: cannot %s in state %q", e.Entity, e.Op, e.State)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// LimitReachedError reports that every advertisement slot is taken.
type LimitReachedError struct {
	Limit int
}

func (e LimitReachedError) Error() string {
	return fmt.Sprintf("advertisement limit reached: at most %d tickets", e.Limit)
}

type ForbiddenError struct {
	Reason string
}

func (e ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}

func (e ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}
