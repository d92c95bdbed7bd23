package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bluecollarconnect/internal/app"
	"bluecollarconnect/internal/identity"
	"bluecollarconnect/internal/ingest"
	"bluecollarconnect/pkg/domain"
)

func (s *Server) handleCreateJobPost(w http.ResponseWriter, r *http.Request, claims identity.Claims) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	form, err := ingest.ReadForm(r, ingest.Options{RequiredFields: app.JobPostRequiredFields})
	if err != nil {
		var ve *ingest.ValidationError
		if errors.As(err, &ve) {
			s.audit(r, "api.job.create", "fail", "user_id", claims.UID, "reason", "validation")
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		s.audit(r, "api.job.create", "fail", "user_id", claims.UID, "reason", "read_form_failed")
		writeError(w, http.StatusInternalServerError, "Error creating job post")
		return
	}
	post, err := s.app.CreateJobPost(form)
	if err != nil {
		s.audit(r, "api.job.create", "fail", "user_id", claims.UID, "reason", "store_failed")
		writeError(w, http.StatusInternalServerError, "Error creating job post")
		return
	}
	s.audit(r, "api.job.create", "success", "user_id", claims.UID, "job_id", post.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Job post created successfully",
		"jobPost": post,
	})
}

func (s *Server) handleListJobPosts(w http.ResponseWriter, r *http.Request, _ identity.Claims) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	query := r.URL.Query()
	filter := domain.JobPostFilter{
		EmployerID: query.Get("employer_id"),
		TypeOfWork: query.Get("type_of_work"),
	}
	// A non-numeric limit is ignored rather than rejected.
	if raw := query.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.Limit = n
		}
	}
	posts, err := s.app.ListJobPosts(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching job posts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobPosts": posts})
}

func (s *Server) handleJobPostByID(w http.ResponseWriter, r *http.Request, _ identity.Claims) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/job/job-post/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Job post id is required")
		return
	}
	if strings.Contains(id, "/") {
		notFound(w, "not found")
		return
	}
	post, err := s.app.GetJobPost(id)
	if err != nil {
		if errors.Is(err, app.ErrJobPostNotFound) {
			notFound(w, "Job post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error fetching job post")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobPost": post})
}
