package marketplace

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the review state of an application.
type Status string

// Application statuses. Employers may move an application between any of them.
const (
	StatusPending     Status = "pending"
	StatusReviewed    Status = "reviewed"
	StatusInterviewed Status = "interviewed"
	StatusRejected    Status = "rejected"
	StatusAccepted    Status = "accepted"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusPending, StatusReviewed, StatusInterviewed, StatusRejected, StatusAccepted}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

func joinStatuses() string {
	names := make([]string, len(Statuses))
	for i, st := range Statuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

// Application is a job seeker's submission to a job
type Application struct {
	ID          uuid.UUID `json:"id"`
	JobID       uuid.UUID `json:"job_id"`
	JobSeekerID uuid.UUID `json:"job_seeker_id"`
	CoverLetter string    `json:"cover_letter"`
	ResumeURL   string    `json:"resume_url"`
	Status      Status    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Applicant is the read-only applicant projection shown to employers
type Applicant struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ApplicationWithJob joins an application with a summary of its job
type ApplicationWithJob struct {
	Application
	Job JobSummary `json:"job"`
}

// ApplicationWithApplicant joins an application with its applicant
type ApplicationWithApplicant struct {
	Application
	Applicant Applicant `json:"applicant"`
}

// ApplyInput holds the job seeker's submission.
type ApplyInput struct {
	CoverLetter string `validate:"required,max=10000"`
	ResumeURL   string `validate:"required,url"`
}

// StatusUpdate holds an employer's decision on an application.
// A nil Notes leaves the stored notes untouched; a non-nil value replaces them.
type StatusUpdate struct {
	Status Status `validate:"required,status"`
	Notes  *string
}
