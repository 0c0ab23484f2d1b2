package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/jobboard/internal/marketplace"
)

// -----------------------------------------------------------------------------
// Application Methods
// -----------------------------------------------------------------------------

const applicationColumns = `a.id, a.job_id, a.job_seeker_id, a.cover_letter, a.resume_url,
	a.status, a.notes, a.created_at, a.updated_at`

func applicationDest(a *marketplace.Application, status *string) []any {
	return []any{&a.ID, &a.JobID, &a.JobSeekerID, &a.CoverLetter, &a.ResumeURL,
		status, &a.Notes, &a.CreatedAt, &a.UpdatedAt}
}

func scanApplication(row pgx.Row) (*marketplace.Application, error) {
	var (
		a      marketplace.Application
		status string
	)
	if err := row.Scan(applicationDest(&a, &status)...); err != nil {
		return nil, err
	}
	a.Status = marketplace.Status(status)
	return &a, nil
}

// CreateApplication inserts app and increments the job's applications_count
// in one transaction. The job row is locked so the active check, the
// uniqueness check and the increment see the same state.
func (db *DB) CreateApplication(ctx context.Context, app *marketplace.Application) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		var active bool
		err := tx.QueryRow(ctx,
			`SELECT is_active FROM jobs WHERE id = $1 FOR UPDATE`, app.JobID,
		).Scan(&active)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &marketplace.ErrNotFound{Resource: "job", ID: app.JobID}
			}
			return fmt.Errorf("failed to lock job: %w", err)
		}
		if !active {
			return &marketplace.ErrJobClosed{JobID: app.JobID}
		}

		tag, err := tx.Exec(ctx,
			`INSERT INTO applications (id, job_id, job_seeker_id, cover_letter, resume_url,
			                           status, notes, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (job_id, job_seeker_id) DO NOTHING`,
			app.ID, app.JobID, app.JobSeekerID, app.CoverLetter, app.ResumeURL,
			string(app.Status), app.Notes, app.CreatedAt, app.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return &marketplace.ErrDuplicateApplication{JobID: app.JobID, JobSeekerID: app.JobSeekerID}
		}

		if _, err := tx.Exec(ctx,
			`UPDATE jobs SET applications_count = applications_count + 1 WHERE id = $1`,
			app.JobID,
		); err != nil {
			return fmt.Errorf("failed to increment applications count: %w", err)
		}
		return nil
	})
}

// GetApplicationJobOwner retrieves an application together with the employer owning its job
func (db *DB) GetApplicationJobOwner(ctx context.Context, id uuid.UUID) (*marketplace.Application, uuid.UUID, error) {
	var (
		a       marketplace.Application
		status  string
		ownerID uuid.UUID
	)
	dest := append(applicationDest(&a, &status), &ownerID)
	err := db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+`, j.employer_id
		 FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 WHERE a.id = $1`,
		id,
	).Scan(dest...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, uuid.Nil, nil
		}
		return nil, uuid.Nil, fmt.Errorf("failed to get application owner: %w", err)
	}
	a.Status = marketplace.Status(status)
	return &a, ownerID, nil
}

// UpdateApplicationStatus sets the status and, when provided, the notes of an application
func (db *DB) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, update marketplace.StatusUpdate) (*marketplace.Application, error) {
	app, err := scanApplication(db.pool.QueryRow(ctx,
		`UPDATE applications a
		 SET status = $2, notes = COALESCE($3, a.notes), updated_at = NOW()
		 WHERE a.id = $1
		 RETURNING `+applicationColumns,
		id, string(update.Status), update.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &marketplace.ErrNotFound{Resource: "application", ID: id}
		}
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}
	return app, nil
}

// ListApplicationsBySeeker lists a job seeker's applications with job summaries, newest first
func (db *DB) ListApplicationsBySeeker(ctx context.Context, jobSeekerID uuid.UUID) ([]marketplace.ApplicationWithJob, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+applicationColumns+`, j.id, j.title, j.company, j.location, j.type, j.salary
		 FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 WHERE a.job_seeker_id = $1
		 ORDER BY a.created_at DESC, a.id ASC`,
		jobSeekerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	items := []marketplace.ApplicationWithJob{}
	for rows.Next() {
		var (
			item    marketplace.ApplicationWithJob
			status  string
			jobType string
		)
		dest := append(applicationDest(&item.Application, &status),
			&item.Job.ID, &item.Job.Title, &item.Job.Company, &item.Job.Location, &jobType, &item.Job.Salary)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		item.Status = marketplace.Status(status)
		item.Job.Type = marketplace.JobType(jobType)
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListApplicationsByJob lists a job's applications with applicant details, newest first
func (db *DB) ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]marketplace.ApplicationWithApplicant, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+applicationColumns+`, u.id, u.name, u.email
		 FROM applications a
		 JOIN users u ON u.id = a.job_seeker_id
		 WHERE a.job_id = $1
		 ORDER BY a.created_at DESC, a.id ASC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list job applications: %w", err)
	}
	defer rows.Close()

	items := []marketplace.ApplicationWithApplicant{}
	for rows.Next() {
		var (
			item   marketplace.ApplicationWithApplicant
			status string
		)
		dest := append(applicationDest(&item.Application, &status),
			&item.Applicant.ID, &item.Applicant.Name, &item.Applicant.Email)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		item.Status = marketplace.Status(status)
		items = append(items, item)
	}
	return items, rows.Err()
}
