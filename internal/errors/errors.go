// Package errors provides the error types shared by the reconciler's
// collaborators. The reconciliation core itself never returns errors.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Aliases of the standard library helpers so callers need one import.
var (
	New = errors.New
	Is  = errors.Is
	As  = errors.As
)

var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBusy indicates that a creation request is already in flight.
	ErrBusy = errors.New("request in flight")

	// ErrDeclined indicates that the user did not confirm a destructive action.
	ErrDeclined = errors.New("declined")

	// ErrRemoteUnavailable indicates a 5xx from the authoritative store.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
)

// NotFoundError represents an error when a resource is not found.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// APIError represents a non-success response from the authoritative store,
// or a transport failure when StatusCode is zero.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: remote status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *APIError) Unwrap() error { return e.Err }

// Is maps status codes onto the sentinel errors.
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return target == ErrNotFound
	case e.StatusCode >= 500:
		return target == ErrRemoteUnavailable
	}
	return false
}

// NewAPIError creates a new APIError for a response status.
func NewAPIError(op string, statusCode int, message string) *APIError {
	return &APIError{Op: op, StatusCode: statusCode, Message: message}
}

// Wrap wraps a transport level failure of op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{Op: op, Err: err}
}
