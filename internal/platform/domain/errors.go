package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError so transports can map it to a status code.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindInvalidState ErrorKind = "invalid_state"
)

// DomainError is a business-rule failure that is safe to show to the caller.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return e.Message
}

// WithCode returns a copy of the error carrying a stable machine-readable code.
func (e *DomainError) WithCode(code string) *DomainError {
	return &DomainError{Kind: e.Kind, Code: code, Message: e.Message}
}

// Is matches another DomainError by kind and code, so sentinel errors survive copying.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code && e.Message == t.Message
}

// NewValidationError creates an error for malformed or out-of-range input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: "validation_error", Message: message}
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    "not_found",
		Message: fmt.Sprintf("%s with ID %s not found", entity, id),
	}
}

// NewUnauthorizedError creates an error for an unauthenticated caller.
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{Kind: KindUnauthorized, Code: "unauthorized", Message: message}
}

// NewForbiddenError creates an error for an authenticated caller lacking rights.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Kind: KindForbidden, Code: "forbidden", Message: message}
}

// NewConflictError creates an error for a request clashing with current state.
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: "conflict", Message: message}
}

// NewInvalidStateError creates an error for a disallowed state transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Kind:    KindInvalidState,
		Code:    "invalid_transition",
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// AsDomainError extracts a DomainError from an error chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind reports whether err carries a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	de, ok := AsDomainError(err)
	return ok && de.Kind == kind
}

// HasCode reports whether err carries a DomainError with the given code.
func HasCode(err error, code string) bool {
	de, ok := AsDomainError(err)
	return ok && de.Code == code
}
