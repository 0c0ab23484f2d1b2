package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/jobboard/internal/config"
	"github.com/jonathan/jobboard/internal/marketplace"
	"github.com/jonathan/jobboard/internal/types"
)

// UserStore persists accounts and their password hashes.
// Both marketplace.MemoryStore and db.DB implement it.
type UserStore interface {
	CreateUser(ctx context.Context, user *marketplace.User, passwordHash string) error
	GetUser(ctx context.Context, id uuid.UUID) (*marketplace.User, error)
	GetUserByEmail(ctx context.Context, email string) (*marketplace.User, string, error)
}

// UserService provides business logic for user authentication operations
type UserService struct {
	store          UserStore
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(store UserStore, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		store:          store,
		passwordConfig: passwordConfig,
	}
}

// Register creates a new user with password authentication
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*marketplace.User, error) {
	if err := s.passwordConfig.CheckPassword(req.Password); err != nil {
		return nil, &marketplace.ErrValidation{Field: "password", Message: err.Error()}
	}
	role, err := marketplace.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	user := &marketplace.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Role:  role,
	}
	if role == marketplace.RoleEmployer {
		user.Company = strings.TrimSpace(req.Company)
		if user.Company == "" {
			return nil, &marketplace.ErrValidation{Field: "company", Message: "is required for employers"}
		}
	}
	if user.Name == "" {
		return nil, &marketplace.ErrValidation{Field: "name", Message: "is required"}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.store.CreateUser(ctx, user, passwordHash); err != nil {
		if errors.Is(err, marketplace.ErrEmailTaken) {
			return nil, &ErrEmailAlreadyExists{Email: user.Email}
		}
		return nil, &marketplace.ErrStorage{Op: "create user", Err: err}
	}
	return user, nil
}

// Login authenticates a user and returns user data
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*marketplace.User, error) {
	user, passwordHash, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, &marketplace.ErrStorage{Op: "get user by email", Err: err}
	}

	// Unknown email and wrong password are indistinguishable to the caller.
	if user == nil || passwordHash == "" {
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, passwordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	return user, nil
}

// Resolve returns the user behind an authenticated user ID, or nil when the
// account no longer exists.
func (s *UserService) Resolve(ctx context.Context, userID uuid.UUID) (*marketplace.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, &marketplace.ErrStorage{Op: "get user", Err: err}
	}
	return user, nil
}
