package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
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

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewAuthenticationRejected covers every credential failure mode: bad
// password, unknown user, locked or inactive account. The message is fixed so
// no path is distinguishable to the caller.
func NewAuthenticationRejected() error {
	return NewDomainError("AUTHENTICATION_REJECTED", "invalid credentials", http.StatusUnauthorized, nil)
}

// NewLoginRequired is the gate's generic denial for requests without a live
// authenticated session.
func NewLoginRequired() error {
	return NewDomainError("AUTHENTICATION_REQUIRED", "login required", http.StatusUnauthorized, nil)
}

// NewAuthorizationDenied covers a known caller with insufficient role. The
// message never names which role was required.
func NewAuthorizationDenied() error {
	return NewDomainError("AUTHORIZATION_DENIED", "forbidden", http.StatusForbidden, nil)
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

// NewConflictingState rejects an operation that would violate entity state,
// e.g. assigning to an inactive account. No mutation occurs.
func NewConflictingState(message string, details map[string]any) error {
	return NewDomainError("CONFLICTING_STATE", message, http.StatusConflict, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError. The wrapped error is
// operator-visible only; it is never rendered to a client.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
