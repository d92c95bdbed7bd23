package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"bluecollarconnect/internal/identity"
)

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// handleSignIn verifies the presented ID token and echoes its claims back.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		s.audit(r, "api.signin", "fail", "reason", "missing_header")
		writeError(w, http.StatusUnauthorized, "Authorization header missing")
		return
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 {
		s.audit(r, "api.signin", "fail", "reason", "malformed_header")
		writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
		return
	}
	claims, err := s.identity.VerifyIDToken(parts[1])
	if err != nil {
		s.audit(r, "api.signin", "fail", "reason", "invalid_token")
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.audit(r, "api.signin", "success", "user_id", claims.UID)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Sign in successful",
		"user":    claims,
	})
}

// handleSignUp creates an identity account and sets its role claim. The
// role string is accepted as-is (lowercased); it is not restricted to the
// known role set.
func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.signupLimiter, "too many signup attempts") {
		s.audit(r, "api.signup", "rate_limited")
		return
	}
	var req signUpRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.audit(r, "api.signup", "fail", "reason", "invalid_json")
		writeError(w, http.StatusBadRequest, "Missing fields: email, password, and role are required.")
		return
	}
	if req.Email == "" || req.Password == "" || req.Role == "" {
		s.audit(r, "api.signup", "fail", "reason", "missing_fields")
		writeError(w, http.StatusBadRequest, "Missing fields: email, password, and role are required.")
		return
	}
	uid, err := s.identity.CreateUser(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailAlreadyExists) || errors.Is(err, identity.ErrEmailAndPasswordRequired) {
			s.audit(r, "api.signup", "fail", "reason", err.Error())
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.audit(r, "api.signup", "fail", "reason", "create_user_failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := s.identity.SetRoleClaim(uid, req.Role); err != nil {
		s.audit(r, "api.signup", "fail", "user_id", uid, "reason", "set_role_failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.audit(r, "api.signup", "success", "user_id", uid)
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User created successfully",
		"uid":     uid,
	})
}

// handleSignOut revokes the caller's refresh tokens; previously minted ID
// tokens stop verifying from this moment on.
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		s.audit(r, "api.signout", "fail", "reason", "missing_header")
		writeError(w, http.StatusUnauthorized, "Authorization header missing")
		return
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 {
		s.audit(r, "api.signout", "fail", "reason", "malformed_header")
		writeError(w, http.StatusUnauthorized, "Invalid Authorization header format")
		return
	}
	claims, err := s.identity.VerifyIDToken(parts[1])
	if err != nil {
		s.audit(r, "api.signout", "fail", "reason", "invalid_token")
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := s.identity.RevokeRefreshTokens(claims.UID); err != nil {
		s.audit(r, "api.signout", "fail", "user_id", claims.UID, "reason", "revoke_failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.audit(r, "api.signout", "success", "user_id", claims.UID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User signed out successfully"})
}
