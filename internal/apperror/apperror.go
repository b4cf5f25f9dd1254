// Package apperror defines the domain error kinds shared by the service and
// repository layers. Handlers translate these to HTTP statuses at the
// boundary; nothing below the handler layer knows about status codes.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Check with errors.Is — every constructor below wraps
// one of these so the kind survives further %w wrapping up the call stack.
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrStorage         = errors.New("storage failure")
)

// AppError carries a sentinel kind plus a human-readable message, and
// optionally the field that caused a validation failure.
type AppError struct {
	Err     error  // one of the sentinel kinds above
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that a resource id did not resolve.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed reports a field-level validation error.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness or state conflict on a resource.
func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden reports that the caller is authenticated but lacks permission.
// HTTP handlers map this to 403.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthenticated reports that an operation requiring a principal was called
// without one. HTTP handlers map this to 401.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// Storage wraps an underlying store error. The wrapped cause is kept for
// logs; handlers only expose Message (generic in production posture).
func Storage(operation string, cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %s: %v", ErrStorage, operation, cause),
		Message: fmt.Sprintf("storage operation failed: %s", operation),
	}
}
