package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonathan/jobboard/internal/marketplace"
	"github.com/jonathan/jobboard/internal/server/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[map[string]string](t, w)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "memory", resp["store"])
}

func TestHiringFlow(t *testing.T) {
	s := newTestServer(t, nil)
	employer, _ := register(t, s, "Erin", "erin@acme.test", "employer", "Acme")
	rival, _ := register(t, s, "Fay", "fay@globex.test", "employer", "Globex")
	seeker, seekerUser := register(t, s, "Sam", "sam@example.test", "jobSeeker", "")
	late, _ := register(t, s, "Lee", "lee@example.test", "jobSeeker", "")

	// Only employers post jobs; the company comes from the account.
	requireError(t, do(t, s, http.MethodPost, "/jobs", "", jobBody("Backend Engineer")), http.StatusUnauthorized, marketplace.CodeUnauthenticated)
	requireError(t, do(t, s, http.MethodPost, "/jobs", seeker, jobBody("Backend Engineer")), http.StatusForbidden, marketplace.CodeForbidden)

	w := do(t, s, http.MethodPost, "/jobs", employer, jobBody("Backend Engineer"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	job := decodeBody[marketplace.Job](t, w)
	assert.Equal(t, "Acme", job.Company)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, job.Skills)
	assert.True(t, job.IsActive)
	jobPath := "/jobs/" + job.ID.String()

	// Public reads.
	w = do(t, s, http.MethodGet, "/jobs?search=postgres", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodeBody[marketplace.JobPage](t, w)
	require.Len(t, page.Jobs, 1)
	assert.Equal(t, marketplace.Pagination{Page: 1, Limit: 10, Total: 1, Pages: 1}, page.Pagination)

	w = do(t, s, http.MethodGet, jobPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Apply once; the second attempt is a duplicate.
	w = do(t, s, http.MethodPost, jobPath+"/applications", seeker, applyBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	app := decodeBody[marketplace.Application](t, w)
	assert.Equal(t, marketplace.StatusPending, app.Status)
	assert.Equal(t, seekerUser.ID, app.JobSeekerID)

	requireError(t, do(t, s, http.MethodPost, jobPath+"/applications", seeker, applyBody()), http.StatusConflict, marketplace.CodeDuplicateApplication)
	requireError(t, do(t, s, http.MethodPost, jobPath+"/applications", employer, applyBody()), http.StatusForbidden, marketplace.CodeForbidden)

	w = do(t, s, http.MethodGet, jobPath, "", nil)
	assert.Equal(t, 1, decodeBody[marketplace.Job](t, w).ApplicationsCount)

	// The owner sees the applicant; a rival employer cannot tell the job has applications.
	w = do(t, s, http.MethodGet, jobPath+"/applications", employer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decodeBody[struct {
		Applications []marketplace.ApplicationWithApplicant `json:"applications"`
		Total        int                                    `json:"total"`
	}](t, w)
	require.Equal(t, 1, listed.Total)
	assert.Equal(t, "Sam", listed.Applications[0].Applicant.Name)

	requireError(t, do(t, s, http.MethodGet, jobPath+"/applications", rival, nil), http.StatusNotFound, marketplace.CodeNotFound)

	// Status decisions.
	appPath := "/applications/" + app.ID.String()
	requireError(t, do(t, s, http.MethodPut, appPath+"/status", employer, map[string]any{"status": "hired"}), http.StatusBadRequest, marketplace.CodeValidation)
	requireError(t, do(t, s, http.MethodPut, appPath+"/status", rival, map[string]any{"status": "rejected"}), http.StatusForbidden, marketplace.CodeForbidden)

	w = do(t, s, http.MethodPut, appPath+"/status", employer, map[string]any{"status": "interviewed", "notes": "Strong Go background"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeBody[marketplace.Application](t, w)
	assert.Equal(t, marketplace.StatusInterviewed, updated.Status)
	assert.Equal(t, "Strong Go background", updated.Notes)

	w = do(t, s, http.MethodGet, "/applications/me", seeker, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decodeBody[struct {
		Applications []marketplace.ApplicationWithJob `json:"applications"`
	}](t, w)
	require.Len(t, mine.Applications, 1)
	assert.Equal(t, "Backend Engineer", mine.Applications[0].Job.Title)
	assert.Equal(t, marketplace.StatusInterviewed, mine.Applications[0].Status)

	require.Equal(t, http.StatusOK, do(t, s, http.MethodGet, appPath, seeker, nil).Code)
	requireError(t, do(t, s, http.MethodGet, appPath, late, nil), http.StatusNotFound, marketplace.CodeNotFound)

	// Closing the job hides it and stops applications.
	w = do(t, s, http.MethodPatch, jobPath, employer, map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	closed := decodeBody[marketplace.Job](t, w)
	assert.False(t, closed.IsActive)
	assert.Equal(t, 1, closed.ApplicationsCount)

	requireError(t, do(t, s, http.MethodPost, jobPath+"/applications", late, applyBody()), http.StatusConflict, marketplace.CodeJobClosed)
	assert.Empty(t, decodeBody[marketplace.JobPage](t, do(t, s, http.MethodGet, "/jobs", "", nil)).Jobs)

	w = do(t, s, http.MethodGet, "/employer/jobs", employer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody[map[string]any](t, w)["total"])

	// Only the owner deletes; applications go with the job.
	requireError(t, do(t, s, http.MethodDelete, jobPath, rival, nil), http.StatusForbidden, marketplace.CodeForbidden)
	w = do(t, s, http.MethodDelete, jobPath, employer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "deleted", decodeBody[map[string]string](t, w)["status"])

	requireError(t, do(t, s, http.MethodGet, jobPath, "", nil), http.StatusNotFound, marketplace.CodeNotFound)
	requireError(t, do(t, s, http.MethodGet, appPath, seeker, nil), http.StatusNotFound, marketplace.CodeNotFound)
}

func TestUpdateJob_PutAndValidation(t *testing.T) {
	s := newTestServer(t, nil)
	employer, _ := register(t, s, "Erin", "erin@acme.test", "employer", "Acme")

	w := do(t, s, http.MethodPost, "/jobs", employer, jobBody("Backend Engineer"))
	require.Equal(t, http.StatusCreated, w.Code)
	jobPath := "/jobs/" + decodeBody[marketplace.Job](t, w).ID.String()

	w = do(t, s, http.MethodPut, jobPath, employer, map[string]any{
		"title":                "Staff Engineer",
		"skills":               []string{"Rust"},
		"application_deadline": "2030-06-30",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	job := decodeBody[marketplace.Job](t, w)
	assert.Equal(t, "Staff Engineer", job.Title)
	assert.Equal(t, "Berlin", job.Location, "absent fields stay unchanged")
	assert.Equal(t, []string{"Rust"}, job.Skills)
	require.NotNil(t, job.ApplicationDeadline)
	assert.Equal(t, time.Date(2030, 6, 30, 0, 0, 0, 0, time.UTC), job.ApplicationDeadline.UTC())

	w = do(t, s, http.MethodPatch, jobPath, employer, `{"application_deadline": null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	job = decodeBody[marketplace.Job](t, w)
	assert.Nil(t, job.ApplicationDeadline)
	assert.Equal(t, "Staff Engineer", job.Title)

	body := requireError(t, do(t, s, http.MethodPatch, jobPath, employer, map[string]any{"title": "  "}), http.StatusBadRequest, marketplace.CodeValidation)
	assert.Equal(t, "title", body.Field)

	requireError(t, do(t, s, http.MethodPatch, jobPath, employer, map[string]any{"type": "Gig"}), http.StatusBadRequest, marketplace.CodeValidation)
	requireError(t, do(t, s, http.MethodPatch, jobPath, employer, map[string]any{"application_deadline": "tomorrow"}), http.StatusBadRequest, marketplace.CodeValidation)
}

func TestCreateJob_Validation(t *testing.T) {
	s := newTestServer(t, nil)
	employer, _ := register(t, s, "Erin", "erin@acme.test", "employer", "Acme")

	missing := jobBody("Backend Engineer")
	delete(missing, "requirements")
	body := requireError(t, do(t, s, http.MethodPost, "/jobs", employer, missing), http.StatusBadRequest, marketplace.CodeValidation)
	assert.Equal(t, "requirements", body.Field)

	badType := jobBody("Backend Engineer")
	badType["type"] = "Freelance"
	body = requireError(t, do(t, s, http.MethodPost, "/jobs", employer, badType), http.StatusBadRequest, marketplace.CodeValidation)
	assert.Equal(t, "type", body.Field)

	requireError(t, do(t, s, http.MethodPost, "/jobs", employer, ""), http.StatusBadRequest, marketplace.CodeValidation)
}

func TestListJobs_QueryParameters(t *testing.T) {
	s := newTestServer(t, nil)
	employer, _ := register(t, s, "Erin", "erin@acme.test", "employer", "Acme")
	for i := 0; i < 12; i++ {
		require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/jobs", employer, jobBody(fmt.Sprintf("Job %02d", i))).Code)
	}

	w := do(t, s, http.MethodGet, "/jobs?page=2&limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodeBody[marketplace.JobPage](t, w)
	assert.Len(t, page.Jobs, 5)
	assert.Equal(t, marketplace.Pagination{Page: 2, Limit: 5, Total: 12, Pages: 3}, page.Pagination)

	w = do(t, s, http.MethodGet, "/jobs?limit=500", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, marketplace.MaxLimit, decodeBody[marketplace.JobPage](t, w).Pagination.Limit)

	w = do(t, s, http.MethodGet, "/jobs?company=nobody", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decodeBody[marketplace.JobPage](t, w).Pagination.Pages)

	for query, pages := range map[string]int{
		"page=9223372036854775807&limit=10": 2,
		"page=922337203685477581&limit=100": 1,
	} {
		w = do(t, s, http.MethodGet, "/jobs?"+query, "", nil)
		require.Equal(t, http.StatusOK, w.Code, query)
		page := decodeBody[marketplace.JobPage](t, w)
		assert.Empty(t, page.Jobs, query)
		assert.Equal(t, 12, page.Pagination.Total, query)
		assert.Equal(t, pages, page.Pagination.Pages, query)
	}

	requireError(t, do(t, s, http.MethodGet, "/jobs?page=0", "", nil), http.StatusBadRequest, marketplace.CodeValidation)
	requireError(t, do(t, s, http.MethodGet, "/jobs?limit=abc", "", nil), http.StatusBadRequest, marketplace.CodeValidation)
	requireError(t, do(t, s, http.MethodGet, "/jobs?type=Gig", "", nil), http.StatusBadRequest, marketplace.CodeValidation)
}

func TestInvalidIDsAndTokens(t *testing.T) {
	s := newTestServer(t, nil)
	seeker, _ := register(t, s, "Sam", "sam@example.test", "jobSeeker", "")

	body := requireError(t, do(t, s, http.MethodGet, "/jobs/not-a-uuid", "", nil), http.StatusBadRequest, marketplace.CodeValidation)
	assert.Equal(t, "id", body.Field)
	requireError(t, do(t, s, http.MethodGet, "/applications/not-a-uuid", seeker, nil), http.StatusBadRequest, marketplace.CodeValidation)

	// A token that is sent must be valid, even on public routes.
	requireError(t, do(t, s, http.MethodGet, "/jobs", "garbage", nil), http.StatusUnauthorized, marketplace.CodeUnauthenticated)
}

func TestProfiles(t *testing.T) {
	s := newTestServer(t, nil)
	seeker, user := register(t, s, "Sam", "sam@example.test", "jobSeeker", "")
	profilePath := "/users/" + user.ID.String() + "/profile"

	requireError(t, do(t, s, http.MethodGet, profilePath, "", nil), http.StatusNotFound, marketplace.CodeNotFound)
	requireError(t, do(t, s, http.MethodPut, "/profile", "", map[string]any{"bio": "hi"}), http.StatusUnauthorized, marketplace.CodeUnauthenticated)

	w := do(t, s, http.MethodPut, "/profile", seeker, map[string]any{
		"bio":    "Gopher",
		"skills": []string{"Go", "go", "SQL"},
		"experience": []map[string]any{
			{"title": "Engineer", "company": "Initech", "from": "2020-01", "current": true},
		},
		"social": map[string]string{"github": "https://github.com/sam"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, s, http.MethodGet, profilePath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decodeBody[marketplace.Profile](t, w)
	assert.Equal(t, "Gopher", profile.Bio)
	assert.Equal(t, []string{"Go", "SQL"}, profile.Skills)
	require.Len(t, profile.Experience, 1)
	assert.Equal(t, "Initech", profile.Experience[0].Company)

	requireError(t, do(t, s, http.MethodPut, "/profile", seeker, map[string]any{"resume_url": "ftp://files/cv"}), http.StatusBadRequest, marketplace.CodeValidation)
}

// unavailableStore fails every job listing.
type unavailableStore struct {
	*marketplace.MemoryStore
}

func (unavailableStore) ListJobs(context.Context, marketplace.JobQuery) ([]marketplace.Job, int, error) {
	return nil, 0, errors.New("connection refused")
}

func TestStorageFailure_IsRetryable(t *testing.T) {
	s := newTestServer(t, unavailableStore{marketplace.NewMemoryStore()})

	w := do(t, s, http.MethodGet, "/jobs", "", nil)
	body := requireError(t, w, http.StatusServiceUnavailable, marketplace.CodeStorage)
	assert.True(t, body.Retryable)
	assert.NotContains(t, body.Error, "connection refused", "storage details stay in the log")
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: ratelimit.DefaultEndpointConfigs(),
	})
	s := newTestServerWithLimiter(t, nil, limiter)

	// POST /auth/login allows a burst of 5.
	for i := 0; i < 5; i++ {
		w := do(t, s, http.MethodPost, "/auth/login", "", map[string]string{"email": "a@b.test", "password": "x"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
	}

	w := do(t, s, http.MethodPost, "/auth/login", "", map[string]string{"email": "a@b.test", "password": "x"})
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, CodeRateLimited, decodeBody[map[string]any](t, w)["code"])

	// Other endpoint groups are unaffected.
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/jobs", "", nil).Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/jobs", nil)
	req.Header.Set("Origin", "https://jobs.example")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCORS_AllowList(t *testing.T) {
	s, err := New(Config{
		Store:       marketplace.NewMemoryStore(),
		JWT:         testJWTConfig(),
		Password:    testPasswordConfig(),
		RateLimiter: ratelimit.NewLimiter(&ratelimit.Config{Enabled: false}),
		CORSOrigins: []string{"https://jobs.example"},
	})
	require.NoError(t, err)

	for origin, want := range map[string]string{
		"https://jobs.example": "https://jobs.example",
		"https://evil.example": "",
	} {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		assert.Equal(t, want, w.Header().Get("Access-Control-Allow-Origin"), origin)
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorContains(t, err, "store")
}
