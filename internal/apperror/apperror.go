package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrVerification means the repository fact source rejected a submission.
	ErrVerification = errors.New("verification failed")
	// ErrDuplicate means (user, canonical repo URL) already has a history record.
	ErrDuplicate = errors.New("duplicate submission")
	// ErrUnavailable marks a retryable external timeout or outage.
	ErrUnavailable = errors.New("unavailable")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned when a state-mutating operation has no identity.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// VerificationFailed is a user-correctable rejection from the repository
// fact source (missing or private repository). Maps to 422.
func VerificationFailed(message string) *AppError {
	return &AppError{
		Err:     ErrVerification,
		Message: message,
		Field:   "repoUrl",
	}
}

// DuplicateSubmission reports that repoURL was already submitted by the user.
func DuplicateSubmission(repoURL string) *AppError {
	return &AppError{
		Err:     ErrDuplicate,
		Message: fmt.Sprintf("repository %s has already been submitted for a quest", repoURL),
		Field:   "repoUrl",
	}
}

// Unavailable wraps a retryable external failure. cause is kept in the
// chain so callers can still inspect it with errors.Is.
func Unavailable(service string, cause error) *AppError {
	err := ErrUnavailable
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrUnavailable, cause)
	}
	return &AppError{
		Err:     err,
		Message: fmt.Sprintf("%s is temporarily unavailable, please retry", service),
	}
}
