package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input past 72 bytes, so longer passwords are rejected.
const maxPasswordBytes = 72

// PasswordConfig holds configuration for password hashing and verification.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string // optional global secret appended before hashing
	MinLength  int
}

// NewPasswordConfig reads BCRYPT_COST (default 12), PASSWORD_PEPPER and
// PASSWORD_MIN_LENGTH (default 8).
func NewPasswordConfig() (*PasswordConfig, error) {
	cfg := &PasswordConfig{
		BcryptCost: 12,
		Pepper:     os.Getenv("PASSWORD_PEPPER"),
		MinLength:  8,
	}

	if raw := os.Getenv("BCRYPT_COST"); raw != "" {
		cost, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
		}
		cfg.BcryptCost = cost
	}
	if raw := os.Getenv("PASSWORD_MIN_LENGTH"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PASSWORD_MIN_LENGTH: %v", err)
		}
		cfg.MinLength = n
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *PasswordConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	if c.MinLength < 1 {
		return fmt.Errorf("PASSWORD_MIN_LENGTH must be positive, got: %d", c.MinLength)
	}
	if len(c.Pepper)+c.MinLength > maxPasswordBytes {
		return fmt.Errorf("PASSWORD_PEPPER too long: %d bytes leaves no room for a %d character password", len(c.Pepper), c.MinLength)
	}
	return nil
}

// CheckPassword reports whether pw satisfies the length policy.
func (c *PasswordConfig) CheckPassword(pw string) error {
	if len(pw) < c.MinLength {
		return fmt.Errorf("password must be at least %d characters", c.MinLength)
	}
	if len(pw)+len(c.Pepper) > maxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes", maxPasswordBytes-len(c.Pepper))
	}
	return nil
}

// HashPassword hashes a password using bcrypt (with optional pepper).
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw+c.Pepper), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a stored hash (with optional pepper).
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pw+c.Pepper)) == nil
}
