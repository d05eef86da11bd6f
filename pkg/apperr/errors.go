// Package apperr defines the error taxonomy shared by the service layer, the
// HTTP client and the mock backend.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError is returned when a required field is missing or malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return e.Message
}

// StatusCode returns the HTTP status code for this error.
func (e *ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *ValidationError) Hint() string {
	if e.Field != "" {
		return fmt.Sprintf("Check the value of field %q.", e.Field)
	}
	return "Check the request body and required fields."
}

// NotFoundError is returned when a record does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %q not found", singular(e.Resource), e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *NotFoundError) Hint() string {
	if e.ID != "" && e.Resource != "" {
		return fmt.Sprintf("List %s to find a valid ID.", e.Resource)
	}
	return "Check the requested path."
}

// ConflictError is returned when creating a record whose ID is taken.
type ConflictError struct {
	Resource string
	ID       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", singular(e.Resource), e.ID)
}

// StatusCode returns the HTTP status code for this error.
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *ConflictError) Hint() string {
	return fmt.Sprintf("Use update to change %q or omit the ID to generate one.", e.ID)
}

// UnauthorizedError is returned when the session is missing or rejected.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message != "" {
		return "unauthorized: " + e.Message
	}
	return "unauthorized"
}

// StatusCode returns the HTTP status code for this error.
func (e *UnauthorizedError) StatusCode() int {
	return http.StatusUnauthorized
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *UnauthorizedError) Hint() string {
	return "Sign in again with 'regdesk login' or 'regdesk wallet-login'."
}

// ForbiddenError is returned when the session lacks permission.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	if e.Message != "" {
		return "forbidden: " + e.Message
	}
	return "forbidden"
}

// StatusCode returns the HTTP status code for this error.
func (e *ForbiddenError) StatusCode() int {
	return http.StatusForbidden
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *ForbiddenError) Hint() string {
	return "Your account does not have permission for this action."
}

// ServerError is a 5xx or 429 response from the backend.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error (%d)", e.Status)
}

// StatusCode returns the HTTP status code for this error.
func (e *ServerError) StatusCode() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *ServerError) Hint() string {
	switch e.Status {
	case http.StatusServiceUnavailable:
		return "The backend is unavailable. Try again in a moment."
	case http.StatusTooManyRequests:
		return "The backend is throttling requests. Wait a moment before retrying."
	}
	return "The backend failed to handle the request. Try again later."
}

// NetworkError is returned when a request got no response at all:
// connection refused, DNS failure or timeout.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code for this error.
func (e *NetworkError) StatusCode() int {
	return http.StatusBadGateway
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *NetworkError) Hint() string {
	return "Check that the backend is reachable and API_BASE_URL is correct."
}

// UserCancelledError is returned when the user declines a wallet prompt.
// It is an expected outcome, not a fault.
type UserCancelledError struct {
	Op string
}

func (e *UserCancelledError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("user cancelled %s", e.Op)
	}
	return "user cancelled"
}

// InvalidTransitionError is returned when a status change is not allowed.
type InvalidTransitionError struct {
	Resource string
	From     string
	To       string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move %s from %q to %q", singular(e.Resource), e.From, e.To)
}

// StatusCode returns the HTTP status code for this error.
func (e *InvalidTransitionError) StatusCode() int {
	return http.StatusConflict
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *InvalidTransitionError) Hint() string {
	return fmt.Sprintf("A %s in status %q cannot become %q.", singular(e.Resource), e.From, e.To)
}

// StatusCodeError is an interface for errors that have an HTTP status code.
type StatusCodeError interface {
	error
	StatusCode() int
}

// HintError is an interface for errors that provide resolution hints.
type HintError interface {
	error
	Hint() string
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsUnauthorized reports whether err is an UnauthorizedError.
func IsUnauthorized(err error) bool {
	var e *UnauthorizedError
	return errors.As(err, &e)
}

// IsCancelled reports whether err is a UserCancelledError.
func IsCancelled(err error) bool {
	var e *UserCancelledError
	return errors.As(err, &e)
}

func singular(resource string) string {
	switch resource {
	case "licenses":
		return "license"
	case "vehicles":
		return "vehicle"
	case "violations":
		return "violation"
	case "authorities":
		return "authority"
	case "":
		return "record"
	}
	return resource
}
