package server

import (
	"net/http"

	"github.com/jonathan/jobboard/internal/marketplace"
)

// handleGetProfile returns a user's public profile.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathID(w, r, "user")
	if !ok {
		return
	}

	profile, err := s.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleUpsertProfile replaces the caller's profile.
func (s *Server) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}

	var input marketplace.ProfileInput
	if err := decodeJSON(w, r, &input); err != nil {
		s.errorResponse(w, err)
		return
	}

	profile, err := s.profiles.UpsertProfile(r.Context(), caller, input)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}
