package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds. Handlers map these to status codes; anything that matches
// none of them is an internal failure.
var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
)

var (
	ErrEmailTaken         = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: could not validate user", ErrUnauthenticated)
	ErrUnknownUser        = fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
	ErrTaskNotFound       = fmt.Errorf("%w: task not found", ErrNotFound)
)

// ValidationError lists the rule each invalid field failed, keyed by the
// field's JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + " (" + e.Fields[name] + ")"
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
