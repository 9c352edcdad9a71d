package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound                = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden               = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized            = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict                = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation              = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInvalidData             = New("INVALID_DATA", http.StatusBadRequest, "invalid data")
	ErrInternal                = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrInvalidUserType         = New("INVALID_USER_TYPE", http.StatusForbidden, "operation not allowed for user type")
	ErrInvalidUserRole         = New("INVALID_USER_ROLE", http.StatusForbidden, "operation not allowed for user role")
	ErrMissingOrganisation     = New("MISSING_ORGANISATION", http.StatusForbidden, "user has no organisation membership")
	ErrMissingOrganisationUnit = New("MISSING_ORGANISATION_UNIT", http.StatusForbidden, "user has no organisation unit membership")
	ErrSupportNotFound         = New("SUPPORT_NOT_FOUND", http.StatusPreconditionFailed, "no engaging support for organisation unit")
	ErrSectionNotFound         = New("SECTION_NOT_FOUND", http.StatusNotFound, "innovation section not found")
	ErrTransferExists          = New("TRANSFER_EXISTS", http.StatusConflict, "a pending ownership transfer already exists")
	ErrTransferExpired         = New("TRANSFER_EXPIRED", http.StatusGone, "ownership transfer has expired")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
