// Package types provides the request and response bodies of the jobboard HTTP API.
package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/jonathan/jobboard/internal/marketplace"
)

// RegisterRequest represents the request to register a new user with password authentication.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=employer jobSeeker"`
	Company  string `json:"company,omitempty" validate:"required_if=Role employer"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the login/register response with user data and authentication token.
type LoginResponse struct {
	User  *marketplace.User `json:"user"`
	Token string            `json:"token"`
}

// Validate validates the RegisterRequest using the validator.
func (r *RegisterRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
