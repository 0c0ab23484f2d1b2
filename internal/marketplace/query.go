package marketplace

import (
	"bytes"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Pagination defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// JobFilter holds the optional predicates for public job listings.
// Empty fields are ignored.
type JobFilter struct {
	Search   string
	Location string
	Type     JobType
	Company  string
}

// PageRequest selects one page of results.
type PageRequest struct {
	Page  int
	Limit int
}

// Pagination describes the page returned and the size of the full result set.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// JobPage is one page of listed jobs.
type JobPage struct {
	Jobs       []Job      `json:"jobs"`
	Pagination Pagination `json:"pagination"`
}

// JobQuery is the normalized query handed to a Store.
type JobQuery struct {
	Filter     JobFilter
	ActiveOnly bool
	Offset     int
	Limit      int
}

// Normalize trims the filter and validates the type predicate.
func (f JobFilter) Normalize() (JobFilter, error) {
	trimFields(&f.Search, &f.Location, &f.Company)
	f.Type = JobType(strings.TrimSpace(string(f.Type)))
	if f.Type != "" && !f.Type.Valid() {
		return f, &ErrValidation{Field: "type", Message: "must be one of " + joinJobTypes()}
	}
	return f, nil
}

// Validate checks page bounds and caps the limit.
func (p PageRequest) Validate() (PageRequest, error) {
	if p.Page < 1 {
		return p, &ErrValidation{Field: "page", Message: "must be at least 1"}
	}
	if p.Limit < 1 {
		return p, &ErrValidation{Field: "limit", Message: "must be at least 1"}
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p, nil
}

// Offset returns the number of results skipped before this page. It
// saturates so that Offset()+Limit never overflows; such a page is past
// the end of any result set.
func (p PageRequest) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > (math.MaxInt-p.Limit)/p.Limit {
		return math.MaxInt - p.Limit
	}
	return (p.Page - 1) * p.Limit
}

// NewPagination builds pagination metadata. Pages is 0 when total is 0.
func NewPagination(page PageRequest, total int) Pagination {
	pages := 0
	if total > 0 {
		pages = (total + page.Limit - 1) / page.Limit
	}
	return Pagination{
		Page:  page.Page,
		Limit: page.Limit,
		Total: total,
		Pages: pages,
	}
}

var folder = cases.Fold()

func foldString(s string) string {
	return folder.String(s)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(foldString(haystack), foldString(needle))
}

// Matches reports whether job satisfies every predicate in f.
func (f JobFilter) Matches(job *Job) bool {
	if f.Search != "" && !matchesSearch(job, f.Search) {
		return false
	}
	if f.Location != "" && !containsFold(job.Location, f.Location) {
		return false
	}
	if f.Company != "" && !containsFold(job.Company, f.Company) {
		return false
	}
	if f.Type != "" && job.Type != f.Type {
		return false
	}
	return true
}

func matchesSearch(job *Job, term string) bool {
	if containsFold(job.Title, term) || containsFold(job.Description, term) {
		return true
	}
	for _, skill := range job.Skills {
		if containsFold(skill, term) {
			return true
		}
	}
	return false
}

// SortJobsNewestFirst orders jobs by creation time descending, ties by id ascending.
func SortJobsNewestFirst(jobs []Job) {
	sort.SliceStable(jobs, func(i, k int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[k].CreatedAt) {
			return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
		}
		return bytes.Compare(jobs[i].ID[:], jobs[k].ID[:]) < 0
	})
}

// FilterJobs applies q to an unordered job set and returns the requested
// window plus the total number of matches.
func FilterJobs(all []Job, q JobQuery) ([]Job, int) {
	matched := make([]Job, 0, len(all))
	for i := range all {
		if q.ActiveOnly && !all[i].IsActive {
			continue
		}
		if q.Filter.Matches(&all[i]) {
			matched = append(matched, all[i])
		}
	}
	SortJobsNewestFirst(matched)

	total := len(matched)
	if q.Offset >= total {
		return []Job{}, total
	}
	end := total
	if q.Limit > 0 && q.Offset+q.Limit < total {
		end = q.Offset + q.Limit
	}
	return matched[q.Offset:end], total
}
