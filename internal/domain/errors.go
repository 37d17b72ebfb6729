package domain

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced by the authentication and authorization core. Callers match them
// with errors.Is; the transport layer decides how each maps to a response.
var (
	ErrDuplicateIdentity   = errors.New("identity already registered")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrMalformedCredential = errors.New("malformed credential")
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token expired")
	ErrUnknownSubject      = errors.New("unknown subject")
	ErrForbidden           = errors.New("forbidden")
	ErrResourceNotFound    = errors.New("resource not found")
	ErrStorageUnavailable  = errors.New("media storage unavailable")
)

// DuplicateIdentityError names which unique field collided.
type DuplicateIdentityError struct {
	Field string
	Value string
}

func (e *DuplicateIdentityError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("a user already has this %s", e.Field)
	}
	return fmt.Sprintf("a user already has the %s %s", e.Field, e.Value)
}

// Is makes the error match ErrDuplicateIdentity.
func (e *DuplicateIdentityError) Is(target error) bool {
	return target == ErrDuplicateIdentity
}

// ValidationError reports rejected client input.
type ValidationError struct {
	Message string
	Details map[string]any
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError.
func NewValidationError(message string, details map[string]any) error {
	return &ValidationError{Message: message, Details: details}
}
