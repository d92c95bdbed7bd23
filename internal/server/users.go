package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"bluecollarconnect/internal/app"
	"bluecollarconnect/internal/identity"
	"bluecollarconnect/internal/ingest"
)

// /api/user/profile/{id}
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, claims identity.Claims) {
	userID := strings.TrimPrefix(r.URL.Path, "/api/user/profile/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "User ID not provided")
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.handleGetProfile(w, userID)
	case http.MethodPost:
		s.handleCreateProfile(w, r, claims, userID)
	case http.MethodPut:
		s.handleUpdateProfile(w, r, claims, userID)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleGetProfile(w http.ResponseWriter, userID string) {
	profile, err := s.app.GetProfile(userID)
	if err != nil {
		if errors.Is(err, app.ErrProfileNotFound) {
			notFound(w, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error fetching profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request, claims identity.Claims, userID string) {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "multipart/form-data") {
		writeError(w, http.StatusBadRequest, "Content-Type must be multipart/form-data")
		return
	}
	form, err := ingest.ReadForm(r, ingest.Options{})
	if err != nil {
		var ve *ingest.ValidationError
		if errors.As(err, &ve) {
			s.audit(r, "api.profile.create", "fail", "user_id", claims.UID, "reason", "validation")
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Error creating profile")
		return
	}
	profile, err := s.app.CreateProfile(r.Context(), userID, form)
	if err != nil {
		if errors.Is(err, app.ErrProfileExists) {
			s.audit(r, "api.profile.create", "fail", "user_id", claims.UID, "reason", "exists")
			writeError(w, http.StatusBadRequest, "Profile already exists for this user.")
			return
		}
		s.audit(r, "api.profile.create", "fail", "user_id", claims.UID, "reason", "store_failed")
		writeError(w, http.StatusInternalServerError, "Error creating profile")
		return
	}
	s.audit(r, "api.profile.create", "success", "user_id", claims.UID, "profile_uid", userID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Profile created successfully",
		"profile": profile,
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, claims identity.Claims, userID string) {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "multipart/form-data") {
		writeError(w, http.StatusBadRequest, "Content-Type must be multipart/form-data")
		return
	}
	form, err := ingest.ReadForm(r, ingest.Options{})
	if err != nil {
		var ve *ingest.ValidationError
		if errors.As(err, &ve) {
			s.audit(r, "api.profile.update", "fail", "user_id", claims.UID, "reason", "validation")
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Error updating profile")
		return
	}
	updated, err := s.app.UpdateProfile(r.Context(), userID, form)
	if err != nil {
		s.audit(r, "api.profile.update", "fail", "user_id", claims.UID, "reason", "store_failed")
		writeError(w, http.StatusInternalServerError, "Error updating profile")
		return
	}
	s.audit(r, "api.profile.update", "success", "user_id", claims.UID, "profile_uid", userID)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Profile updated successfully",
		"updatedFields": updated,
	})
}

type getRoleRequest struct {
	UserID string `json:"userId"`
}

func (s *Server) handleGetRole(w http.ResponseWriter, r *http.Request, _ identity.Claims) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req getRoleRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing field: userId is required.")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "Missing field: userId is required.")
		return
	}
	role, err := s.identity.RoleClaim(req.UserID)
	if err != nil {
		if errors.Is(err, identity.ErrRoleNotSet) || errors.Is(err, identity.ErrAccountNotFound) {
			notFound(w, "Role not found for this user.")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"role": role})
}
