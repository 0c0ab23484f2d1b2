package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/jobboard/internal/marketplace"
)

// SkillList accepts either a JSON array of strings or a single
// comma-separated string.
type SkillList []string

// UnmarshalJSON implements json.Unmarshaler
func (s *SkillList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		*s = strings.Split(joined, ",")
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("skills must be a string or an array of strings")
	}
	*s = list
	return nil
}

// Date accepts "2006-01-02" or an RFC 3339 timestamp.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string")
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ParseDate parses a calendar date or an RFC 3339 timestamp into UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return t.UTC(), nil
}

// OptionalDate tells an absent date apart from an explicit null, which clears it.
type OptionalDate struct {
	Set   bool
	Value *Date
}

// UnmarshalJSON implements json.Unmarshaler
func (o *OptionalDate) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var d Date
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	o.Value = &d
	return nil
}

func (d *Date) timePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// CreateJobRequest represents the body of POST /jobs.
// The company is taken from the employer's account.
type CreateJobRequest struct {
	Title               string              `json:"title"`
	Location            string              `json:"location"`
	Description         string              `json:"description"`
	Requirements        string              `json:"requirements"`
	Type                marketplace.JobType `json:"type"`
	Salary              string              `json:"salary,omitempty"`
	Skills              SkillList           `json:"skills,omitempty"`
	ApplicationDeadline *Date               `json:"application_deadline,omitempty"`
}

// ToInput converts the request into catalog input.
func (r *CreateJobRequest) ToInput() marketplace.JobInput {
	return marketplace.JobInput{
		Title:               r.Title,
		Location:            r.Location,
		Description:         r.Description,
		Requirements:        r.Requirements,
		Type:                r.Type,
		Salary:              r.Salary,
		Skills:              r.Skills,
		ApplicationDeadline: r.ApplicationDeadline.timePtr(),
	}
}

// UpdateJobRequest represents the body of PUT and PATCH /jobs/{id}.
// Absent fields are left unchanged; a null application_deadline clears it.
type UpdateJobRequest struct {
	Title               *string              `json:"title,omitempty"`
	Location            *string              `json:"location,omitempty"`
	Description         *string              `json:"description,omitempty"`
	Requirements        *string              `json:"requirements,omitempty"`
	Type                *marketplace.JobType `json:"type,omitempty"`
	Salary              *string              `json:"salary,omitempty"`
	Skills              *SkillList           `json:"skills,omitempty"`
	ApplicationDeadline OptionalDate         `json:"application_deadline"`
	IsActive            *bool                `json:"is_active,omitempty"`
}

// ToPatch converts the request into a catalog patch.
func (r *UpdateJobRequest) ToPatch() marketplace.JobPatch {
	patch := marketplace.JobPatch{
		Title:        r.Title,
		Location:     r.Location,
		Description:  r.Description,
		Requirements: r.Requirements,
		Type:         r.Type,
		Salary:       r.Salary,
		IsActive:     r.IsActive,
	}
	if r.Skills != nil {
		patch.Skills = *r.Skills
		patch.SkillsSet = true
	}
	if r.ApplicationDeadline.Set {
		patch.ApplicationDeadline = r.ApplicationDeadline.Value.timePtr()
		patch.DeadlineSet = true
	}
	return patch
}

// ApplyRequest represents the body of POST /jobs/{id}/applications.
type ApplyRequest struct {
	CoverLetter string `json:"cover_letter"`
	ResumeURL   string `json:"resume_url"`
}

// ToInput converts the request into workflow input.
func (r *ApplyRequest) ToInput() marketplace.ApplyInput {
	return marketplace.ApplyInput{CoverLetter: r.CoverLetter, ResumeURL: r.ResumeURL}
}

// StatusUpdateRequest represents the body of PUT /applications/{id}/status.
type StatusUpdateRequest struct {
	Status marketplace.Status `json:"status"`
	Notes  *string            `json:"notes,omitempty"`
}

// ToUpdate converts the request into a workflow status update.
func (r *StatusUpdateRequest) ToUpdate() marketplace.StatusUpdate {
	return marketplace.StatusUpdate{Status: r.Status, Notes: r.Notes}
}

// ParseJobListQuery reads the filter and page of GET /jobs from query parameters.
func ParseJobListQuery(values url.Values) (marketplace.JobFilter, marketplace.PageRequest, error) {
	filter := marketplace.JobFilter{
		Search:   values.Get("search"),
		Location: values.Get("location"),
		Type:     marketplace.JobType(values.Get("type")),
		Company:  values.Get("company"),
	}

	page := marketplace.PageRequest{Page: marketplace.DefaultPage, Limit: marketplace.DefaultLimit}
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"page", &page.Page},
		{"limit", &page.Limit},
	} {
		raw := strings.TrimSpace(values.Get(p.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filter, page, &marketplace.ErrValidation{Field: p.name, Message: "must be an integer"}
		}
		*p.dst = n
	}
	return filter, page, nil
}
