package marketplace

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Workflow owns applications and their review status.
type Workflow struct {
	store Store
	now   func() time.Time
}

// NewWorkflow creates a Workflow backed by store
func NewWorkflow(store Store) *Workflow {
	return &Workflow{store: store, now: time.Now}
}

// ApplyToJob submits the calling job seeker's application. The application
// starts pending and the job's counter is incremented in the same store write.
func (w *Workflow) ApplyToJob(ctx context.Context, caller *User, jobID uuid.UUID, input ApplyInput) (*Application, error) {
	if err := Authorize(caller, JobSeekerOnly); err != nil {
		return nil, err
	}

	trimFields(&input.CoverLetter, &input.ResumeURL)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	now := w.now().UTC()
	app := &Application{
		ID:          uuid.New(),
		JobID:       jobID,
		JobSeekerID: caller.ID,
		CoverLetter: input.CoverLetter,
		ResumeURL:   input.ResumeURL,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := w.store.CreateApplication(ctx, app); err != nil {
		return nil, storageError("create application", err)
	}
	return app, nil
}

// ListMyApplications returns the caller's applications with a summary of each job.
func (w *Workflow) ListMyApplications(ctx context.Context, caller *User) ([]ApplicationWithJob, error) {
	if err := Authorize(caller, JobSeekerOnly); err != nil {
		return nil, err
	}

	items, err := w.store.ListApplicationsBySeeker(ctx, caller.ID)
	if err != nil {
		return nil, storageError("list applications", err)
	}
	if items == nil {
		items = []ApplicationWithJob{}
	}
	return items, nil
}

// ListApplicationsForJob returns the applications to a job owned by the caller.
// A job that does not exist and a job owned by someone else both yield ErrNotFound.
func (w *Workflow) ListApplicationsForJob(ctx context.Context, caller *User, jobID uuid.UUID) ([]ApplicationWithApplicant, error) {
	if err := Authorize(caller, EmployerOnly); err != nil {
		return nil, err
	}

	job, err := w.store.GetJobOwnedBy(ctx, jobID, caller.ID)
	if err != nil {
		return nil, storageError("get job", err)
	}
	if job == nil {
		return nil, &ErrNotFound{Resource: "job", ID: jobID}
	}

	items, err := w.store.ListApplicationsByJob(ctx, job.ID)
	if err != nil {
		return nil, storageError("list job applications", err)
	}
	if items == nil {
		items = []ApplicationWithApplicant{}
	}
	return items, nil
}

// UpdateApplicationStatus moves an application to any status. Only the
// employer owning the application's job may do so.
func (w *Workflow) UpdateApplicationStatus(ctx context.Context, caller *User, applicationID uuid.UUID, update StatusUpdate) (*Application, error) {
	if err := Authorize(caller, EmployerOnly); err != nil {
		return nil, err
	}
	if err := validateStruct(update); err != nil {
		return nil, err
	}

	app, ownerID, err := w.store.GetApplicationJobOwner(ctx, applicationID)
	if err != nil {
		return nil, storageError("get application", err)
	}
	if app == nil {
		return nil, &ErrNotFound{Resource: "application", ID: applicationID}
	}
	if err := AuthorizeOwner(caller, ownerID); err != nil {
		return nil, err
	}

	updated, err := w.store.UpdateApplicationStatus(ctx, applicationID, update)
	if err != nil {
		return nil, storageError("update application status", err)
	}
	return updated, nil
}

// GetApplication returns an application to its applicant or to the employer
// owning its job. Anyone else gets ErrNotFound.
func (w *Workflow) GetApplication(ctx context.Context, caller *User, applicationID uuid.UUID) (*Application, error) {
	if err := Authorize(caller, Authenticated); err != nil {
		return nil, err
	}

	app, ownerID, err := w.store.GetApplicationJobOwner(ctx, applicationID)
	if err != nil {
		return nil, storageError("get application", err)
	}
	if app == nil {
		return nil, &ErrNotFound{Resource: "application", ID: applicationID}
	}

	switch caller.Role {
	case RoleJobSeeker:
		if app.JobSeekerID == caller.ID {
			return app, nil
		}
	case RoleEmployer:
		if ownerID == caller.ID {
			return app, nil
		}
	}
	return nil, &ErrNotFound{Resource: "application", ID: applicationID}
}
