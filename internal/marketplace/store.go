package marketplace

import (
	"context"

	"github.com/google/uuid"
)

// Store is the single authoritative persistence layer behind the marketplace.
//
// Lookups return (nil, nil) when the entity does not exist. Mutations that
// can fail with a typed outcome (ErrNotFound, ErrJobClosed,
// ErrDuplicateApplication) return those types; any other error is treated
// as a storage failure.
type Store interface {
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)

	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*Job, error)
	// GetJobOwnedBy returns the job only when employerID owns it.
	GetJobOwnedBy(ctx context.Context, jobID, employerID uuid.UUID) (*Job, error)
	// UpdateJob locks the job, passes a copy to fn, and persists the result
	// if fn returns nil. ErrNotFound when the job does not exist.
	UpdateJob(ctx context.Context, jobID uuid.UUID, fn func(job *Job) error) (*Job, error)
	// DeleteJob removes the job and its applications. ErrNotFound when absent.
	DeleteJob(ctx context.Context, jobID uuid.UUID) error
	ListJobs(ctx context.Context, q JobQuery) ([]Job, int, error)
	ListJobsByEmployer(ctx context.Context, employerID uuid.UUID) ([]Job, error)

	// CreateApplication inserts app and increments the job's counter as one unit.
	CreateApplication(ctx context.Context, app *Application) error
	// GetApplicationJobOwner returns the application and its job's employer id.
	GetApplicationJobOwner(ctx context.Context, id uuid.UUID) (*Application, uuid.UUID, error)
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) (*Application, error)
	ListApplicationsBySeeker(ctx context.Context, jobSeekerID uuid.UUID) ([]ApplicationWithJob, error)
	ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]ApplicationWithApplicant, error)

	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpsertProfile(ctx context.Context, profile *Profile) error
}
