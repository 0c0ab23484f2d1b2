package server

import (
	"net/http"

	"github.com/jonathan/jobboard/internal/types"
)

// handleListJobs returns one page of active jobs matching the query filters.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	filter, page, err := types.ParseJobListQuery(r.URL.Query())
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	result, err := s.catalog.ListJobs(r.Context(), filter, page)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := s.pathID(w, r, "job")
	if !ok {
		return
	}

	job, err := s.catalog.GetJob(r.Context(), jobID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}

	var req types.CreateJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	job, err := s.catalog.CreateJob(r.Context(), caller, req.ToInput())
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, job)
}

// handleUpdateJob serves both PUT and PATCH; absent fields are left unchanged.
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}
	jobID, ok := s.pathID(w, r, "job")
	if !ok {
		return
	}

	var req types.UpdateJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	job, err := s.catalog.UpdateJob(r.Context(), caller, jobID, req.ToPatch())
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}
	jobID, ok := s.pathID(w, r, "job")
	if !ok {
		return
	}

	if err := s.catalog.DeleteJob(r.Context(), caller, jobID); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleListEmployerJobs returns every job of the calling employer, active or not.
func (s *Server) handleListEmployerJobs(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}

	jobs, err := s.catalog.ListJobsByEmployer(r.Context(), caller)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"total": len(jobs),
	})
}
