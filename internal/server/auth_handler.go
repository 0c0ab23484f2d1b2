package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/jobboard/internal/marketplace"
	"github.com/jonathan/jobboard/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
	validator   *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		validator:   validator.New(),
	}
}

// Register handles user registration requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, extractValidationErrors(err))
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	log.Printf("[auth] registered %s user %s", user.Role, user.ID)
	h.respondWithToken(w, http.StatusCreated, user)
}

// Login handles user login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, extractValidationErrors(err))
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respondWithToken(w, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user *marketplace.User) {
	token, err := h.jwtService.GenerateToken(user.ID)
	if err != nil {
		log.Printf("[auth] failed to generate token for %s: %v", user.ID, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to generate token", Code: CodeInternal})
		return
	}
	writeJSON(w, status, types.LoginResponse{User: user, Token: token})
}

// extractValidationErrors converts the first validator failure into a marketplace validation error.
func extractValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return &marketplace.ErrValidation{Field: "body", Message: "invalid request"}
	}

	ve := validationErrors[0]
	field := strings.ToLower(ve.Field())
	var msg string
	switch ve.Tag() {
	case "required":
		msg = "is required"
	case "required_if":
		msg = "is required for employers"
	case "email":
		msg = "must be a valid email address"
	case "min":
		msg = fmt.Sprintf("must be at least %s characters", ve.Param())
	case "oneof":
		msg = "must be one of: " + strings.ReplaceAll(ve.Param(), " ", ", ")
	default:
		msg = "is invalid (" + ve.Tag() + ")"
	}
	return &marketplace.ErrValidation{Field: field, Message: msg}
}
