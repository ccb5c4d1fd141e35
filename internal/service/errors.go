package service

import (
	"errors"

	"github.com/nurpe/procure-proposals/internal/validation"
)

var (
	// ErrPermissionDenied covers missing rights, illegal transitions and
	// evaluation-stage mismatches. It intentionally carries no detail about
	// what exists.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound is returned both when a record does not exist and when it
	// is not visible to the actor.
	ErrNotFound = errors.New("not found")
	// ErrConflict covers uniqueness and state-consistency violations,
	// including stale-version writes.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable wraps collaborator failures (database, directory).
	ErrUnavailable = errors.New("service unavailable")
)

// ValidationError reports structural problems with one or more fields. All
// applicable validators have run by the time it is returned, so Fields holds
// the complete set of problems, not just the first.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func invalid(errs validation.Errors) error {
	return &ValidationError{Fields: errs}
}

func invalidField(field string, messages ...string) error {
	errs := validation.Errors{}
	errs.Add(field, messages...)
	return &ValidationError{Fields: errs}
}
