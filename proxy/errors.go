package proxy

import (
	"net/http"

	"github.com/pkg/errors"
)

// ServerErrorMessage is the only message callers see for unexpected failures.
const ServerErrorMessage = "Server error"

// ValidationError reports a missing or malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError returns a ValidationError with message.
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// NotFoundError reports an unmatched route or an absent record.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NewNotFoundError returns a NotFoundError with message.
func NewNotFoundError(message string) error {
	return &NotFoundError{Message: message}
}

// ConflictError reports a create that hit an existing record.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NewConflictError returns a ConflictError with message.
func NewConflictError(message string) error {
	return &ConflictError{Message: message}
}

// StatusFor maps err onto the response status and the message that is safe to
// return. Errors wrapped with github.com/pkg/errors are unwrapped first.
func StatusFor(err error) (int, string) {
	switch e := errors.Cause(err).(type) {
	case *ValidationError:
		return http.StatusBadRequest, e.Message
	case *ConflictError:
		return http.StatusBadRequest, e.Message
	case *NotFoundError:
		return http.StatusNotFound, e.Message
	default:
		return http.StatusInternalServerError, ServerErrorMessage
	}
}
