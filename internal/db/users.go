package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/jobboard/internal/marketplace"
)

const userColumns = `id, name, email, role, company, created_at, updated_at`

// CreateUser inserts user with the given password hash and fills in its
// generated id and timestamps. Returns marketplace.ErrEmailTaken when the
// email is already registered.
func (db *DB) CreateUser(ctx context.Context, user *marketplace.User, passwordHash string) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role, company)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		user.Name, user.Email, passwordHash, user.Role.String(), user.Company,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return marketplace.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*marketplace.User, error) {
	user, err := scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user and its password hash by email, case-insensitively
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*marketplace.User, string, error) {
	var (
		u        marketplace.User
		role     string
		password string
	)
	err := db.pool.QueryRow(ctx,
		`SELECT `+userColumns+`, password_hash FROM users WHERE LOWER(email) = LOWER($1)`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &role, &u.Company, &u.CreatedAt, &u.UpdatedAt, &password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to get user by email: %w", err)
	}
	if u.Role, err = marketplace.ParseRole(role); err != nil {
		return nil, "", fmt.Errorf("user %s has invalid role %q", u.ID, role)
	}
	return &u, password, nil
}

func scanUser(row pgx.Row) (*marketplace.User, error) {
	var (
		u    marketplace.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.Company, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	r, err := marketplace.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("user %s has invalid role %q", u.ID, role)
	}
	u.Role = r
	return &u, nil
}
