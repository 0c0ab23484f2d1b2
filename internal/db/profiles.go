package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/jobboard/internal/marketplace"
)

// -----------------------------------------------------------------------------
// Profile Methods
// -----------------------------------------------------------------------------

// GetProfile retrieves a user's profile
func (db *DB) GetProfile(ctx context.Context, userID uuid.UUID) (*marketplace.Profile, error) {
	var p marketplace.Profile
	var experienceJSON, educationJSON, socialJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT user_id, bio, location, skills, experience, education, resume_url, social, updated_at
		 FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.Bio, &p.Location, &p.Skills, &experienceJSON, &educationJSON,
		&p.ResumeURL, &socialJSON, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	// Parse JSONB fields
	if err := json.Unmarshal(experienceJSON, &p.Experience); err != nil {
		return nil, fmt.Errorf("failed to decode profile experience: %w", err)
	}
	if err := json.Unmarshal(educationJSON, &p.Education); err != nil {
		return nil, fmt.Errorf("failed to decode profile education: %w", err)
	}
	if err := json.Unmarshal(socialJSON, &p.Social); err != nil {
		return nil, fmt.Errorf("failed to decode profile social links: %w", err)
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return &p, nil
}

// UpsertProfile creates or replaces a user's profile
func (db *DB) UpsertProfile(ctx context.Context, profile *marketplace.Profile) error {
	experienceJSON, err := json.Marshal(jsonArray(profile.Experience))
	if err != nil {
		return fmt.Errorf("failed to marshal experience: %w", err)
	}
	educationJSON, err := json.Marshal(jsonArray(profile.Education))
	if err != nil {
		return fmt.Errorf("failed to marshal education: %w", err)
	}
	socialJSON, err := json.Marshal(profile.Social)
	if err != nil {
		return fmt.Errorf("failed to marshal social links: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO profiles (user_id, bio, location, skills, experience, education, resume_url, social, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id) DO UPDATE SET
		     bio = $2,
		     location = $3,
		     skills = $4,
		     experience = $5,
		     education = $6,
		     resume_url = $7,
		     social = $8,
		     updated_at = $9`,
		profile.UserID, profile.Bio, profile.Location, textArray(profile.Skills),
		experienceJSON, educationJSON, profile.ResumeURL, socialJSON, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// jsonArray makes nil slices encode as [] rather than null.
func jsonArray[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
