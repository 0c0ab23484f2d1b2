package marketplace

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Stable error codes exposed to presentation layers.
const (
	CodeUnauthenticated      = "unauthenticated"
	CodeForbidden            = "forbidden"
	CodeNotFound             = "not_found"
	CodeValidation           = "validation_error"
	CodeJobClosed            = "job_closed"
	CodeDuplicateApplication = "duplicate_application"
	CodeStorage              = "storage_error"
)

// ErrUnauthenticated indicates the caller identity could not be resolved
type ErrUnauthenticated struct{}

func (e *ErrUnauthenticated) Error() string {
	return "authentication required"
}

// ErrForbidden indicates the caller lacks the role or ownership for an operation
type ErrForbidden struct {
	Reason string
}

func (e *ErrForbidden) Error() string {
	if e.Reason == "" {
		return "forbidden"
	}
	return "forbidden: " + e.Reason
}

// ErrNotFound indicates the target entity is absent, or is not visible to the caller
type ErrNotFound struct {
	Resource string
	ID       uuid.UUID
}

func (e *ErrNotFound) Error() string {
	if e.ID == uuid.Nil {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates missing or malformed input
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrJobClosed indicates an application was attempted against an inactive job
type ErrJobClosed struct {
	JobID uuid.UUID
}

func (e *ErrJobClosed) Error() string {
	return fmt.Sprintf("job is no longer accepting applications: %s", e.JobID)
}

// ErrDuplicateApplication indicates the job seeker already applied to the job
type ErrDuplicateApplication struct {
	JobID       uuid.UUID
	JobSeekerID uuid.UUID
}

func (e *ErrDuplicateApplication) Error() string {
	return fmt.Sprintf("already applied to job %s", e.JobID)
}

// ErrStorage wraps a failure of the underlying persistence layer
type ErrStorage struct {
	Op  string
	Err error
}

func (e *ErrStorage) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *ErrStorage) Unwrap() error {
	return e.Err
}

// Code returns the stable code for err: "" for nil, CodeStorage for unknown errors.
func Code(err error) string {
	var (
		unauth    *ErrUnauthenticated
		forbidden *ErrForbidden
		notFound  *ErrNotFound
		invalid   *ErrValidation
		closed    *ErrJobClosed
		duplicate *ErrDuplicateApplication
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &unauth):
		return CodeUnauthenticated
	case errors.As(err, &forbidden):
		return CodeForbidden
	case errors.As(err, &notFound):
		return CodeNotFound
	case errors.As(err, &invalid):
		return CodeValidation
	case errors.As(err, &closed):
		return CodeJobClosed
	case errors.As(err, &duplicate):
		return CodeDuplicateApplication
	default:
		return CodeStorage
	}
}

// IsRetryable reports whether a caller may retry the failed operation.
// Only storage failures are treated as transient.
func IsRetryable(err error) bool {
	var storageErr *ErrStorage
	return errors.As(err, &storageErr)
}

// isDomainError reports whether err already carries one of the typed outcomes.
func isDomainError(err error) bool {
	var storageErr *ErrStorage
	if errors.As(err, &storageErr) {
		return true
	}
	return Code(err) != CodeStorage
}

// storageError passes typed outcomes through and wraps everything else.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	return &ErrStorage{Op: op, Err: err}
}
