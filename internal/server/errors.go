// Package server provides the HTTP REST API for the job marketplace.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/jobboard/internal/marketplace"
)

// Identity error codes. Marketplace errors use marketplace.Code.
const (
	CodeEmailTaken         = "email_taken"
	CodeInvalidCredentials = "invalid_credentials"
	CodeRateLimited        = "rate_limit_exceeded"
	CodeInternal           = "internal_error"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailErr *ErrEmailAlreadyExists
		credErr  *ErrInvalidCredentials
	)
	switch {
	case errors.As(err, &emailErr):
		return http.StatusConflict
	case errors.As(err, &credErr):
		return http.StatusUnauthorized
	}

	switch marketplace.Code(err) {
	case marketplace.CodeUnauthenticated:
		return http.StatusUnauthorized
	case marketplace.CodeForbidden:
		return http.StatusForbidden
	case marketplace.CodeNotFound:
		return http.StatusNotFound
	case marketplace.CodeValidation:
		return http.StatusBadRequest
	case marketplace.CodeJobClosed, marketplace.CodeDuplicateApplication:
		return http.StatusConflict
	case marketplace.CodeStorage:
		if marketplace.IsRetryable(err) {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorCode returns the stable code reported alongside an error response.
func errorCode(err error) string {
	var (
		emailErr *ErrEmailAlreadyExists
		credErr  *ErrInvalidCredentials
	)
	switch {
	case errors.As(err, &emailErr):
		return CodeEmailTaken
	case errors.As(err, &credErr):
		return CodeInvalidCredentials
	}

	code := marketplace.Code(err)
	if code == marketplace.CodeStorage && !marketplace.IsRetryable(err) {
		return CodeInternal
	}
	return code
}
