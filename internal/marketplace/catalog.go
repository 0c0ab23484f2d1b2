package marketplace

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Catalog owns job postings: creation and maintenance by their employer,
// public lookup and listing for everyone.
type Catalog struct {
	store Store
	now   func() time.Time
}

// NewCatalog creates a Catalog backed by store
func NewCatalog(store Store) *Catalog {
	return &Catalog{store: store, now: time.Now}
}

// CreateJob publishes a new job for the calling employer.
func (c *Catalog) CreateJob(ctx context.Context, caller *User, input JobInput) (*Job, error) {
	if err := Authorize(caller, EmployerOnly); err != nil {
		return nil, err
	}

	trimFields(&input.Title, &input.Location, &input.Description, &input.Requirements, &input.Salary)
	input.Type = JobType(strings.TrimSpace(string(input.Type)))
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	company := strings.TrimSpace(caller.Company)
	if company == "" {
		return nil, &ErrValidation{Field: "company", Message: "employer has no company on record"}
	}

	now := c.now().UTC()
	job := &Job{
		ID:                  uuid.New(),
		EmployerID:          caller.ID,
		Title:               input.Title,
		Company:             company,
		Location:            input.Location,
		Description:         input.Description,
		Requirements:        input.Requirements,
		Type:                input.Type,
		Salary:              input.Salary,
		Skills:              NormalizeSkills(input.Skills),
		ApplicationDeadline: input.ApplicationDeadline,
		IsActive:            true,
		ApplicationsCount:   0,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := c.store.CreateJob(ctx, job); err != nil {
		return nil, storageError("create job", err)
	}
	return job, nil
}

// UpdateJob applies patch to a job owned by the caller.
func (c *Catalog) UpdateJob(ctx context.Context, caller *User, jobID uuid.UUID, patch JobPatch) (*Job, error) {
	if err := Authorize(caller, EmployerOnly); err != nil {
		return nil, err
	}

	job, err := c.store.UpdateJob(ctx, jobID, func(job *Job) error {
		if job.EmployerID != caller.ID {
			return &ErrForbidden{Reason: "not the owner of this job"}
		}
		if err := patch.apply(job); err != nil {
			return err
		}
		job.UpdatedAt = c.now().UTC()
		return nil
	})
	if err != nil {
		return nil, storageError("update job", err)
	}
	return job, nil
}

// DeleteJob removes a job owned by the caller together with its applications.
func (c *Catalog) DeleteJob(ctx context.Context, caller *User, jobID uuid.UUID) error {
	if err := Authorize(caller, EmployerOnly); err != nil {
		return err
	}

	job, err := c.store.GetJob(ctx, jobID)
	if err != nil {
		return storageError("get job", err)
	}
	if job == nil {
		return &ErrNotFound{Resource: "job", ID: jobID}
	}
	if err := AuthorizeOwner(caller, job.EmployerID); err != nil {
		return err
	}

	if err := c.store.DeleteJob(ctx, jobID); err != nil {
		return storageError("delete job", err)
	}
	return nil
}

// GetJob returns a job regardless of whether it is active.
func (c *Catalog) GetJob(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	job, err := c.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, storageError("get job", err)
	}
	if job == nil {
		return nil, &ErrNotFound{Resource: "job", ID: jobID}
	}
	return job, nil
}

// ListJobs returns one page of active jobs matching filter, newest first.
func (c *Catalog) ListJobs(ctx context.Context, filter JobFilter, page PageRequest) (*JobPage, error) {
	filter, err := filter.Normalize()
	if err != nil {
		return nil, err
	}
	page, err = page.Validate()
	if err != nil {
		return nil, err
	}

	jobs, total, err := c.store.ListJobs(ctx, JobQuery{
		Filter:     filter,
		ActiveOnly: true,
		Offset:     page.Offset(),
		Limit:      page.Limit,
	})
	if err != nil {
		return nil, storageError("list jobs", err)
	}
	if jobs == nil {
		jobs = []Job{}
	}

	return &JobPage{
		Jobs:       jobs,
		Pagination: NewPagination(page, total),
	}, nil
}

// ListJobsByEmployer returns all of the calling employer's jobs, active or not.
func (c *Catalog) ListJobsByEmployer(ctx context.Context, caller *User) ([]Job, error) {
	if err := Authorize(caller, EmployerOnly); err != nil {
		return nil, err
	}

	jobs, err := c.store.ListJobsByEmployer(ctx, caller.ID)
	if err != nil {
		return nil, storageError("list employer jobs", err)
	}
	if jobs == nil {
		jobs = []Job{}
	}
	return jobs, nil
}
