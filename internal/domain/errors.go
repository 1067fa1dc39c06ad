package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals invalid input; wrapped with detail via %w.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateApplication signals a second submission for the same (candidate, job) pair.
	ErrDuplicateApplication = errors.New("application already exists")
	// ErrUnauthorized signals a failed capability check.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict signals that the entity state rejects the operation.
	ErrConflict = errors.New("conflict")
	// ErrInvalidTransition is the matching target for InvalidTransitionError.
	ErrInvalidTransition = errors.New("invalid stage transition")
)

// InvalidTransitionError reports an illegal stage change, carrying both the
// current and the requested stage so callers can surface them verbatim.
type InvalidTransitionError struct {
	From Stage
	To   Stage
}

func (e *InvalidTransitionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("invalid stage transition from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
