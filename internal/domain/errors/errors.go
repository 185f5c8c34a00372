package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAlreadyExists        = errors.New("already exists")
	ErrNotFound             = errors.New("not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrValidation           = errors.New("validation failed")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrPersistenceIntegrity = errors.New("persistence integrity violation")
	ErrMalformedIdentifier  = errors.New("malformed identifier")
)

// ValidationError describes rejected input and unwraps to ErrValidation.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// WithField attaches a field level message.
func (e *ValidationError) WithField(name, message string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[name] = message
	return e
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return ErrValidation.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError names the missing resource and unwraps to ErrNotFound.
type NotFoundError struct {
	Resource string
	IDs      []string
}

// NewNotFoundError builds a NotFoundError for the given resource and identifiers.
func NewNotFoundError(resource string, ids ...string) *NotFoundError {
	return &NotFoundError{Resource: resource, IDs: ids}
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) == 0 {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, strings.Join(e.IDs, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// TransitionError carries the rejected pair and unwraps to ErrInvalidTransition.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change status from %q to %q", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// IntegrityError reports a post-write verification mismatch.
type IntegrityError struct {
	Entity   string
	ID       int64
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s %d: expected status %q after write, found %q", e.Entity, e.ID, e.Expected, e.Actual)
}

func (e *IntegrityError) Unwrap() error { return ErrPersistenceIntegrity }
