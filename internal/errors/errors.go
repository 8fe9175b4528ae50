package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ===========================================================================
// Custom Errors
// Standard error taxonomy for the ingestion pipeline.
// Each sentinel maps to an HTTP status code at the boundary.
// ===========================================================================

// Sentinel errors, intended for use with errors.Is().
var (
	// ErrNotFound the referenced resource does not exist (unknown gateway
	// instance, missing company, ...).
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput the payload is missing required fields or is malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedMessageType the gateway payload carries a message kind
	// this pipeline does not understand. The gateway must not retry.
	ErrUnsupportedMessageType = errors.New("unsupported message type")

	// ErrIgnoredEvent the gateway delivered an event this pipeline
	// deliberately does not process (status updates, non-upsert events).
	// Acknowledged with 200 so the gateway stops resending it.
	ErrIgnoredEvent = errors.New("ignored event")

	// ErrExternal a collaborator call failed (decryption service, media
	// store, raw media fetch). Absorbed inside the media chain; it should
	// never reach the HTTP boundary.
	ErrExternal = errors.New("external service error")

	// ErrInternal unexpected server-side failure.
	ErrInternal = errors.New("internal server error")
)

// ===========================================================================
// AppError
// ===========================================================================

// AppError carries an error with its user-facing message and HTTP mapping.
type AppError struct {
	// Err is the wrapped sentinel or cause.
	Err error

	// Message is the user-facing description.
	Message string

	// Code is the machine-readable error code (e.g. "NOT_FOUND").
	Code string

	// StatusCode is the HTTP status to respond with.
	StatusCode int
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap exposes the cause for errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New builds an AppError from a sentinel error.
func New(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: StatusCode(err),
		Code:       ErrorCode(err),
	}
}

// Wrap annotates err with a message while keeping the error chain intact.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// ===========================================================================
// Error Mapping
// ===========================================================================

// StatusCode maps an error to its HTTP status code.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnsupportedMessageType):
		return http.StatusBadRequest
	case errors.Is(err, ErrIgnoredEvent):
		return http.StatusOK
	case errors.Is(err, ErrExternal):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode maps an error to its machine-readable code string.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrUnsupportedMessageType):
		return "UNSUPPORTED_MESSAGE_TYPE"
	case errors.Is(err, ErrIgnoredEvent):
		return "IGNORED_EVENT"
	case errors.Is(err, ErrExternal):
		return "EXTERNAL_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// Is is a convenience passthrough to errors.Is().
func Is(err, target error) bool {
	return errors.Is(err, target)
}
