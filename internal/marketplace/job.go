package marketplace

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobType is the employment type of a posting.
type JobType string

// Job types accepted by the catalog.
const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeContract   JobType = "Contract"
	JobTypeInternship JobType = "Internship"
	JobTypeRemote     JobType = "Remote"
)

// JobTypes lists every valid job type in display order.
var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeRemote}

// Valid reports whether t is one of the enumerated job types.
func (t JobType) Valid() bool {
	for _, jt := range JobTypes {
		if t == jt {
			return true
		}
	}
	return false
}

// Job is a posting owned by an employer
type Job struct {
	ID                  uuid.UUID  `json:"id"`
	EmployerID          uuid.UUID  `json:"employer_id"`
	Title               string     `json:"title"`
	Company             string     `json:"company"`
	Location            string     `json:"location"`
	Description         string     `json:"description"`
	Requirements        string     `json:"requirements"`
	Type                JobType    `json:"type"`
	Salary              string     `json:"salary,omitempty"`
	Skills              []string   `json:"skills"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`
	IsActive            bool       `json:"is_active"`
	ApplicationsCount   int        `json:"applications_count"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// JobSummary is the read-only job projection attached to an applicant's applications
type JobSummary struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Company  string    `json:"company"`
	Location string    `json:"location"`
	Type     JobType   `json:"type"`
	Salary   string    `json:"salary,omitempty"`
}

// Summary projects j onto the fields shown next to an application.
func (j *Job) Summary() JobSummary {
	return JobSummary{
		ID:       j.ID,
		Title:    j.Title,
		Company:  j.Company,
		Location: j.Location,
		Type:     j.Type,
		Salary:   j.Salary,
	}
}

// JobInput holds the caller-supplied fields for a new job.
// Company is taken from the employer record.
type JobInput struct {
	Title               string  `validate:"required"`
	Location            string  `validate:"required"`
	Description         string  `validate:"required"`
	Requirements        string  `validate:"required"`
	Type                JobType `validate:"required,jobtype"`
	Salary              string
	Skills              []string
	ApplicationDeadline *time.Time
}

// JobPatch holds optional updates to an existing job. Nil fields are left
// untouched. Skills and ApplicationDeadline apply only when their Set flag is
// true, so a nil deadline with DeadlineSet clears it.
type JobPatch struct {
	Title               *string
	Location            *string
	Description         *string
	Requirements        *string
	Type                *JobType
	Salary              *string
	Skills              []string
	SkillsSet           bool
	ApplicationDeadline *time.Time
	DeadlineSet         bool
	IsActive            *bool
}

// apply copies the patch onto job after validating each provided field.
func (p JobPatch) apply(job *Job) error {
	required := []struct {
		field string
		value *string
		dst   *string
	}{
		{"title", p.Title, &job.Title},
		{"location", p.Location, &job.Location},
		{"description", p.Description, &job.Description},
		{"requirements", p.Requirements, &job.Requirements},
	}
	for _, r := range required {
		if r.value == nil {
			continue
		}
		v := strings.TrimSpace(*r.value)
		if v == "" {
			return &ErrValidation{Field: r.field, Message: "cannot be empty"}
		}
		*r.dst = v
	}

	if p.Type != nil {
		if !p.Type.Valid() {
			return &ErrValidation{Field: "type", Message: "must be one of " + joinJobTypes()}
		}
		job.Type = *p.Type
	}
	if p.Salary != nil {
		job.Salary = strings.TrimSpace(*p.Salary)
	}
	if p.SkillsSet {
		job.Skills = NormalizeSkills(p.Skills)
	}
	if p.DeadlineSet {
		job.ApplicationDeadline = nil
		if p.ApplicationDeadline != nil {
			d := *p.ApplicationDeadline
			job.ApplicationDeadline = &d
		}
	}
	if p.IsActive != nil {
		job.IsActive = *p.IsActive
	}
	return nil
}

// NormalizeSkills turns raw skill input into an ordered, deduplicated list.
// Each entry may itself be a comma separated list; entries are trimmed,
// empties dropped, and duplicates (case-insensitive) removed keeping the first spelling.
func NormalizeSkills(raw []string) []string {
	skills := make([]string, 0, len(raw))
	seen := make(map[string]bool)
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			skill := strings.TrimSpace(part)
			if skill == "" {
				continue
			}
			key := foldString(skill)
			if seen[key] {
				continue
			}
			seen[key] = true
			skills = append(skills, skill)
		}
	}
	return skills
}

func joinJobTypes() string {
	names := make([]string, len(JobTypes))
	for i, jt := range JobTypes {
		names[i] = string(jt)
	}
	return strings.Join(names, ", ")
}
