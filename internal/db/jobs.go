package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/jobboard/internal/marketplace"
	"golang.org/x/sync/errgroup"
)

// -----------------------------------------------------------------------------
// Job Methods
// -----------------------------------------------------------------------------

const jobColumns = `id, employer_id, title, company, location, description, requirements,
	type, salary, skills, application_deadline, is_active, applications_count,
	created_at, updated_at`

func scanJob(row pgx.Row) (*marketplace.Job, error) {
	var (
		j       marketplace.Job
		jobType string
	)
	err := row.Scan(&j.ID, &j.EmployerID, &j.Title, &j.Company, &j.Location, &j.Description,
		&j.Requirements, &jobType, &j.Salary, &j.Skills, &j.ApplicationDeadline, &j.IsActive,
		&j.ApplicationsCount, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.Type = marketplace.JobType(jobType)
	if j.Skills == nil {
		j.Skills = []string{}
	}
	return &j, nil
}

// textArray keeps nil slices from being written as NULL.
func textArray(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func collectJobs(rows pgx.Rows) ([]marketplace.Job, error) {
	defer rows.Close()

	jobs := []marketplace.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// CreateJob inserts a job built by the catalog
func (db *DB) CreateJob(ctx context.Context, job *marketplace.Job) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO jobs (id, employer_id, title, company, location, description, requirements,
		                   type, salary, skills, application_deadline, is_active, applications_count,
		                   created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		job.ID, job.EmployerID, job.Title, job.Company, job.Location, job.Description, job.Requirements,
		string(job.Type), job.Salary, textArray(job.Skills), job.ApplicationDeadline, job.IsActive, job.ApplicationsCount,
		job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*marketplace.Job, error) {
	job, err := scanJob(db.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// GetJobOwnedBy retrieves a job only if employerID owns it
func (db *DB) GetJobOwnedBy(ctx context.Context, jobID, employerID uuid.UUID) (*marketplace.Job, error) {
	job, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1 AND employer_id = $2`, jobID, employerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// UpdateJob locks the job row, lets fn modify it, and writes the editable
// columns back. The owner, company, counter and creation time are never written.
func (db *DB) UpdateJob(ctx context.Context, jobID uuid.UUID, fn func(job *marketplace.Job) error) (*marketplace.Job, error) {
	var updated *marketplace.Job
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		job, err := scanJob(tx.QueryRow(ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, jobID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &marketplace.ErrNotFound{Resource: "job", ID: jobID}
			}
			return fmt.Errorf("failed to lock job: %w", err)
		}

		if err := fn(job); err != nil {
			return err
		}

		updated, err = scanJob(tx.QueryRow(ctx,
			`UPDATE jobs SET title = $2, location = $3, description = $4, requirements = $5,
			                 type = $6, salary = $7, skills = $8, application_deadline = $9,
			                 is_active = $10, updated_at = $11
			 WHERE id = $1
			 RETURNING `+jobColumns,
			jobID, job.Title, job.Location, job.Description, job.Requirements,
			string(job.Type), job.Salary, textArray(job.Skills), job.ApplicationDeadline,
			job.IsActive, job.UpdatedAt,
		))
		if err != nil {
			return fmt.Errorf("failed to update job: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteJob removes a job and its applications in one transaction
func (db *DB) DeleteJob(ctx context.Context, jobID uuid.UUID) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM applications WHERE job_id = $1`, jobID); err != nil {
			return fmt.Errorf("failed to delete job applications: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, jobID)
		if err != nil {
			return fmt.Errorf("failed to delete job: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return &marketplace.ErrNotFound{Resource: "job", ID: jobID}
		}
		return nil
	})
}

// escapeLike escapes LIKE wildcards so the term matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// buildJobWhere builds the WHERE clause for a job listing. It returns the
// clause, its arguments and the next free placeholder index.
func buildJobWhere(q marketplace.JobQuery) (string, []any, int) {
	var conditions []string
	var args []any
	argIndex := 1

	if q.ActiveOnly {
		conditions = append(conditions, "is_active")
	}

	if q.Filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			`(title ILIKE $%[1]d OR description ILIKE $%[1]d
			  OR EXISTS (SELECT 1 FROM unnest(skills) AS s(skill) WHERE s.skill ILIKE $%[1]d))`,
			argIndex))
		args = append(args, "%"+escapeLike(q.Filter.Search)+"%")
		argIndex++
	}

	if q.Filter.Location != "" {
		conditions = append(conditions, fmt.Sprintf("location ILIKE $%d", argIndex))
		args = append(args, "%"+escapeLike(q.Filter.Location)+"%")
		argIndex++
	}

	if q.Filter.Company != "" {
		conditions = append(conditions, fmt.Sprintf("company ILIKE $%d", argIndex))
		args = append(args, "%"+escapeLike(q.Filter.Company)+"%")
		argIndex++
	}

	if q.Filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIndex))
		args = append(args, string(q.Filter.Type))
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}
	return whereClause, args, argIndex
}

// ListJobs returns one window of matching jobs, newest first, and the total
// number of matches. The count and the page are fetched concurrently.
func (db *DB) ListJobs(ctx context.Context, q marketplace.JobQuery) ([]marketplace.Job, int, error) {
	whereClause, args, argIndex := buildJobWhere(q)

	g, gCtx := errgroup.WithContext(ctx)

	var total int
	g.Go(func() error {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM jobs %s", whereClause)
		if err := db.pool.QueryRow(gCtx, countQuery, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count jobs: %w", err)
		}
		return nil
	})

	var jobs []marketplace.Job
	g.Go(func() error {
		pageArgs := append(append([]any{}, args...), q.Limit, q.Offset)
		query := fmt.Sprintf(
			`SELECT %s FROM jobs %s
			 ORDER BY created_at DESC, id ASC
			 LIMIT $%d OFFSET $%d`,
			jobColumns, whereClause, argIndex, argIndex+1,
		)
		rows, err := db.pool.Query(gCtx, query, pageArgs...)
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		jobs, err = collectJobs(rows)
		if err != nil {
			return fmt.Errorf("failed to scan jobs: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// ListJobsByEmployer returns all jobs of an employer, newest first
func (db *DB) ListJobsByEmployer(ctx context.Context, employerID uuid.UUID) ([]marketplace.Job, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE employer_id = $1
		 ORDER BY created_at DESC, id ASC`,
		employerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list employer jobs: %w", err)
	}
	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan employer jobs: %w", err)
	}
	return jobs, nil
}
