package server

import (
	"net/http"

	"github.com/jonathan/jobboard/internal/types"
)

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}
	jobID, ok := s.pathID(w, r, "job")
	if !ok {
		return
	}

	var req types.ApplyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	app, err := s.workflow.ApplyToJob(r.Context(), caller, jobID, req.ToInput())
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, app)
}

// handleListJobApplications returns the applications to a job owned by the caller.
func (s *Server) handleListJobApplications(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}
	jobID, ok := s.pathID(w, r, "job")
	if !ok {
		return
	}

	apps, err := s.workflow.ListApplicationsForJob(r.Context(), caller, jobID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"applications": apps,
		"total":        len(apps),
	})
}

func (s *Server) handleListMyApplications(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}

	apps, err := s.workflow.ListMyApplications(r.Context(), caller)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"applications": apps,
		"total":        len(apps),
	})
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}
	appID, ok := s.pathID(w, r, "application")
	if !ok {
		return
	}

	app, err := s.workflow.GetApplication(r.Context(), caller, appID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

func (s *Server) handleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}
	appID, ok := s.pathID(w, r, "application")
	if !ok {
		return
	}

	var req types.StatusUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	app, err := s.workflow.UpdateApplicationStatus(r.Context(), caller, appID, req.ToUpdate())
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}
