package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// Error codes carried in the response envelope.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Challenge reports whether the response must carry a WWW-Authenticate header.
func (e *DomainError) Challenge() bool {
	return e.HTTPStatus == http.StatusUnauthorized
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewInternalError wraps an unexpected failure as a 500.
func NewInternalError(err error) *DomainError {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError maps any error to its response form. Failures that must not reveal which
// check failed share one message: unknown user and wrong password both read as invalid
// credentials, and every token failure reads the same.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var dup *domain.DuplicateIdentityError
	var validation *domain.ValidationError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &dup):
		return &DomainError{
			Code:       CodeConflict,
			Message:    fmt.Sprintf("%s already registered", dup.Field),
			HTTPStatus: http.StatusConflict,
			Details:    map[string]any{"field": dup.Field},
			Err:        err,
		}
	case errors.Is(err, domain.ErrDuplicateIdentity):
		return &DomainError{Code: CodeConflict, Message: "identity already registered", HTTPStatus: http.StatusConflict, Err: err}
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrInvalidPassword):
		return &DomainError{
			Code:       CodeInvalidCredentials,
			Message:    "Incorrect username or password.",
			HTTPStatus: http.StatusUnauthorized,
			Err:        err,
		}
	case errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken),
		errors.Is(err, domain.ErrUnknownSubject):
		return &DomainError{
			Code:       CodeUnauthorized,
			Message:    "Could not validate credentials.",
			HTTPStatus: http.StatusUnauthorized,
			Err:        err,
		}
	case errors.Is(err, domain.ErrForbidden):
		return &DomainError{
			Code:       CodeForbidden,
			Message:    "You do not have permission to modify this resource.",
			HTTPStatus: http.StatusForbidden,
			Err:        err,
		}
	case errors.Is(err, domain.ErrResourceNotFound):
		return &DomainError{Code: CodeNotFound, Message: "resource not found", HTTPStatus: http.StatusNotFound, Err: err}
	case errors.Is(err, domain.ErrStorageUnavailable):
		return &DomainError{Code: CodeServiceUnavailable, Message: "file uploads are not available", HTTPStatus: http.StatusServiceUnavailable, Err: err}
	case errors.As(err, &validation):
		return &DomainError{Code: CodeValidationFailed, Message: validation.Message, HTTPStatus: http.StatusBadRequest, Details: validation.Details, Err: err}
	case errors.As(err, &fiberErr):
		return fromFiberError(fiberErr)
	}
	return NewInternalError(err)
}

func fromFiberError(err *fiber.Error) *DomainError {
	code := CodeInternal
	switch err.Code {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		code = CodeValidationFailed
	case http.StatusNotFound:
		code = CodeNotFound
	case http.StatusMethodNotAllowed:
		code = "METHOD_NOT_ALLOWED"
	case http.StatusRequestTimeout:
		code = "TIMEOUT"
	case http.StatusUnauthorized:
		code = CodeUnauthorized
	case http.StatusForbidden:
		code = CodeForbidden
	case http.StatusServiceUnavailable:
		code = CodeServiceUnavailable
	}
	return &DomainError{Code: code, Message: err.Message, HTTPStatus: err.Code, Err: err}
}
