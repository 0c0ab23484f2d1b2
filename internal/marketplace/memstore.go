package marketplace

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrEmailTaken is returned by user stores when an email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// MemoryStore is an in-process Store guarded by a single lock.
// It backs the server when no database is configured and the package tests.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]*User
	passwords    map[uuid.UUID]string
	emails       map[string]uuid.UUID
	jobs         map[uuid.UUID]*Job
	applications map[uuid.UUID]*Application
	applied      map[[2]uuid.UUID]uuid.UUID // (job, seeker) -> application
	profiles     map[uuid.UUID]*Profile
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[uuid.UUID]*User),
		passwords:    make(map[uuid.UUID]string),
		emails:       make(map[string]uuid.UUID),
		jobs:         make(map[uuid.UUID]*Job),
		applications: make(map[uuid.UUID]*Application),
		applied:      make(map[[2]uuid.UUID]uuid.UUID),
		profiles:     make(map[uuid.UUID]*Profile),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

// CreateUser stores a new user with its password hash, assigning ID and timestamps.
func (m *MemoryStore) CreateUser(_ context.Context, user *User, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := emailKey(user.Email)
	if _, exists := m.emails[key]; exists {
		return ErrEmailTaken
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	u := *user
	m.users[u.ID] = &u
	m.passwords[u.ID] = passwordHash
	m.emails[key] = u.ID
	return nil
}

// GetUser implements Store
func (m *MemoryStore) GetUser(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// GetUserByEmail returns the user and its password hash, or nil when absent.
func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*User, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emails[emailKey(email)]
	if !ok {
		return nil, "", nil
	}
	cp := *m.users[id]
	return &cp, m.passwords[id], nil
}

// -----------------------------------------------------------------------------
// Jobs
// -----------------------------------------------------------------------------

func copyJob(j *Job) Job {
	cp := *j
	cp.Skills = append([]string(nil), j.Skills...)
	if j.ApplicationDeadline != nil {
		d := *j.ApplicationDeadline
		cp.ApplicationDeadline = &d
	}
	return cp
}

// CreateJob implements Store
func (m *MemoryStore) CreateJob(_ context.Context, job *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	cp := copyJob(job)
	m.jobs[cp.ID] = &cp
	return nil
}

// GetJob implements Store
func (m *MemoryStore) GetJob(_ context.Context, id uuid.UUID) (*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := copyJob(j)
	return &cp, nil
}

// GetJobOwnedBy implements Store
func (m *MemoryStore) GetJobOwnedBy(_ context.Context, jobID, employerID uuid.UUID) (*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[jobID]
	if !ok || j.EmployerID != employerID {
		return nil, nil
	}
	cp := copyJob(j)
	return &cp, nil
}

// UpdateJob implements Store
func (m *MemoryStore) UpdateJob(_ context.Context, jobID uuid.UUID, fn func(job *Job) error) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID]
	if !ok {
		return nil, &ErrNotFound{Resource: "job", ID: jobID}
	}
	cp := copyJob(j)
	if err := fn(&cp); err != nil {
		return nil, err
	}

	// Identity and the cached counter are owned by the store.
	cp.ID = j.ID
	cp.EmployerID = j.EmployerID
	cp.Company = j.Company
	cp.ApplicationsCount = j.ApplicationsCount
	cp.CreatedAt = j.CreatedAt

	stored := copyJob(&cp)
	m.jobs[jobID] = &stored
	return &cp, nil
}

// DeleteJob implements Store
func (m *MemoryStore) DeleteJob(_ context.Context, jobID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[jobID]; !ok {
		return &ErrNotFound{Resource: "job", ID: jobID}
	}
	delete(m.jobs, jobID)
	for id, app := range m.applications {
		if app.JobID == jobID {
			delete(m.applied, [2]uuid.UUID{app.JobID, app.JobSeekerID})
			delete(m.applications, id)
		}
	}
	return nil
}

// ListJobs implements Store
func (m *MemoryStore) ListJobs(_ context.Context, q JobQuery) ([]Job, int, error) {
	m.mu.RLock()
	all := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		all = append(all, copyJob(j))
	}
	m.mu.RUnlock()

	jobs, total := FilterJobs(all, q)
	return jobs, total, nil
}

// ListJobsByEmployer implements Store
func (m *MemoryStore) ListJobsByEmployer(_ context.Context, employerID uuid.UUID) ([]Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := []Job{}
	for _, j := range m.jobs {
		if j.EmployerID == employerID {
			jobs = append(jobs, copyJob(j))
		}
	}
	SortJobsNewestFirst(jobs)
	return jobs, nil
}

// -----------------------------------------------------------------------------
// Applications
// -----------------------------------------------------------------------------

// CreateApplication implements Store
func (m *MemoryStore) CreateApplication(_ context.Context, app *Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[app.JobID]
	if !ok {
		return &ErrNotFound{Resource: "job", ID: app.JobID}
	}
	if !job.IsActive {
		return &ErrJobClosed{JobID: app.JobID}
	}
	key := [2]uuid.UUID{app.JobID, app.JobSeekerID}
	if _, exists := m.applied[key]; exists {
		return &ErrDuplicateApplication{JobID: app.JobID, JobSeekerID: app.JobSeekerID}
	}

	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	cp := *app
	m.applications[cp.ID] = &cp
	m.applied[key] = cp.ID
	job.ApplicationsCount++
	return nil
}

// GetApplicationJobOwner implements Store
func (m *MemoryStore) GetApplicationJobOwner(_ context.Context, id uuid.UUID) (*Application, uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	app, ok := m.applications[id]
	if !ok {
		return nil, uuid.Nil, nil
	}
	job, ok := m.jobs[app.JobID]
	if !ok {
		return nil, uuid.Nil, nil
	}
	cp := *app
	return &cp, job.EmployerID, nil
}

// UpdateApplicationStatus implements Store
func (m *MemoryStore) UpdateApplicationStatus(_ context.Context, id uuid.UUID, update StatusUpdate) (*Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.applications[id]
	if !ok {
		return nil, &ErrNotFound{Resource: "application", ID: id}
	}
	app.Status = update.Status
	if update.Notes != nil {
		app.Notes = *update.Notes
	}
	app.UpdatedAt = time.Now().UTC()
	cp := *app
	return &cp, nil
}

// ListApplicationsBySeeker implements Store
func (m *MemoryStore) ListApplicationsBySeeker(_ context.Context, jobSeekerID uuid.UUID) ([]ApplicationWithJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := []ApplicationWithJob{}
	for _, app := range m.applications {
		if app.JobSeekerID != jobSeekerID {
			continue
		}
		job, ok := m.jobs[app.JobID]
		if !ok {
			continue
		}
		items = append(items, ApplicationWithJob{Application: *app, Job: job.Summary()})
	}
	sort.Slice(items, func(i, k int) bool {
		return newerApplication(&items[i].Application, &items[k].Application)
	})
	return items, nil
}

// ListApplicationsByJob implements Store
func (m *MemoryStore) ListApplicationsByJob(_ context.Context, jobID uuid.UUID) ([]ApplicationWithApplicant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := []ApplicationWithApplicant{}
	for _, app := range m.applications {
		if app.JobID != jobID {
			continue
		}
		item := ApplicationWithApplicant{Application: *app}
		if u, ok := m.users[app.JobSeekerID]; ok {
			item.Applicant = Applicant{ID: u.ID, Name: u.Name, Email: u.Email}
		} else {
			item.Applicant = Applicant{ID: app.JobSeekerID}
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, k int) bool {
		return newerApplication(&items[i].Application, &items[k].Application)
	})
	return items, nil
}

func newerApplication(a, b *Application) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

// -----------------------------------------------------------------------------
// Profiles
// -----------------------------------------------------------------------------

// GetProfile implements Store
func (m *MemoryStore) GetProfile(_ context.Context, userID uuid.UUID) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// UpsertProfile implements Store
func (m *MemoryStore) UpsertProfile(_ context.Context, profile *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *profile
	m.profiles[profile.UserID] = &cp
	return nil
}
