package marketplace

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fixture bundles the services over one MemoryStore with a controllable clock.
type fixture struct {
	store    *MemoryStore
	catalog  *Catalog
	workflow *Workflow
	profiles *ProfileService
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: NewMemoryStore(),
		clock: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	tick := func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	}
	f.catalog = NewCatalog(f.store)
	f.catalog.now = tick
	f.workflow = NewWorkflow(f.store)
	f.workflow.now = tick
	f.profiles = NewProfileService(f.store)
	f.profiles.now = tick
	return f
}

func (f *fixture) employer(t *testing.T, company string) *User {
	t.Helper()
	u := &User{Name: company + " HR", Email: uuid.NewString() + "@example.com", Role: RoleEmployer, Company: company}
	require.NoError(t, f.store.CreateUser(context.Background(), u, "hash"))
	return u
}

func (f *fixture) seeker(t *testing.T, name string) *User {
	t.Helper()
	u := &User{Name: name, Email: uuid.NewString() + "@example.com", Role: RoleJobSeeker}
	require.NoError(t, f.store.CreateUser(context.Background(), u, "hash"))
	return u
}

func validJobInput(title string) JobInput {
	return JobInput{
		Title:        title,
		Location:     "Berlin",
		Description:  "Build and run services",
		Requirements: "3+ years",
		Type:         JobTypeFullTime,
		Skills:       []string{"Go"},
	}
}

func (f *fixture) createJob(t *testing.T, owner *User, input JobInput) *Job {
	t.Helper()
	job, err := f.catalog.CreateJob(context.Background(), owner, input)
	require.NoError(t, err)
	return job
}

func validApply() ApplyInput {
	return ApplyInput{CoverLetter: "I would love to join.", ResumeURL: "https://example.com/cv.pdf"}
}

// GetApplication reads an application without access checks
func (m *MemoryStore) GetApplication(_ context.Context, id uuid.UUID) (*Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	app, ok := m.applications[id]
	if !ok {
		return nil, nil
	}
	cp := *app
	return &cp, nil
}

// CountApplicationsByJob counts the stored applications of a job
func (m *MemoryStore) CountApplicationsByJob(_ context.Context, jobID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, app := range m.applications {
		if app.JobID == jobID {
			n++
		}
	}
	return n, nil
}
