// Package server exposes the public HTTP API under /api.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bluecollarconnect/internal/app"
	"bluecollarconnect/internal/identity"
	"bluecollarconnect/internal/ratelimit"
	"bluecollarconnect/internal/util"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                      *app.App
	Identity                 identity.Provider
	AllowedOrigins           []string
	RedisAddr                string
	RedisPassword            string
	SignupRateLimitPerMinute int
	MaxUploadBytes           int64
}

// Server exposes the marketplace HTTP endpoints.
type Server struct {
	app            *app.App
	identity       identity.Provider
	mux            *http.ServeMux
	allowedOrigins []string
	maxUploadBytes int64
	signupLimiter  *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	signupLimit := cfg.SignupRateLimitPerMinute
	if signupLimit <= 0 {
		signupLimit = 5
	}
	signupLimiter, err := ratelimit.NewRedisFixedWindowLimiter(
		cfg.RedisAddr, cfg.RedisPassword, "bluecollar:ratelimit:signup", signupLimit, time.Minute)
	if err != nil {
		return nil, fmt.Errorf("init signup limiter: %w", err)
	}
	s := &Server{
		app:            cfg.App,
		identity:       cfg.Identity,
		mux:            http.NewServeMux(),
		allowedOrigins: cfg.AllowedOrigins,
		maxUploadBytes: normalizeMaxBytes(cfg.MaxUploadBytes),
		signupLimiter:  signupLimiter,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("api",
		util.WithSecurityHeaders(util.WithCORS(s.allowedOrigins, s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api", s.handleWelcome)

	// auth
	s.mux.HandleFunc("/api/auth/sign-in", s.handleSignIn)
	s.mux.HandleFunc("/api/auth/sign-up", s.handleSignUp)
	s.mux.HandleFunc("/api/auth/sign-out", s.handleSignOut)

	// jobs
	s.mux.Handle("/api/job/create", s.requireRole("employer", "Employers", s.handleCreateJobPost))
	s.mux.Handle("/api/job/all", s.requireRole("worker", "Workers", s.handleListJobPosts))
	s.mux.Handle("/api/job/job-post/", s.authenticated(s.handleJobPostByID))

	// users
	s.mux.Handle("/api/user/profile/", s.authenticated(s.handleProfile))
	s.mux.Handle("/api/user/get-role", s.authenticated(s.handleGetRole))

	// communities
	s.mux.Handle("/api/community/create-community", s.requireRole("worker", "Workers", s.handleCreateCommunity))
	s.mux.Handle("/api/community/join", s.authenticated(s.handleJoinCommunity))
	s.mux.Handle("/api/community/leave", s.authenticated(s.handleLeaveCommunity))
	s.mux.Handle("/api/community/joined/", s.authenticated(s.handleJoinedCommunities))
	s.mux.Handle("/api/community/search", s.authenticated(s.handleSearchCommunities))
	s.mux.Handle("/api/community/all", s.authenticated(s.handleAllCommunities))
	s.mux.Handle("/api/community/posts", s.authenticated(s.handleCommunityPosts))
	s.mux.Handle("/api/community/add-comment", s.authenticated(s.handleAddComment))
	s.mux.Handle("/api/community/get-post", s.authenticated(s.handleGetPost))
	s.mux.Handle("/api/community/joined-posts", s.authenticated(s.handleJoinedPosts))
	s.mux.Handle("/api/community/", s.authenticated(s.handleCommunityByID))

	// admin namespace is gated but currently has no handlers
	s.mux.Handle("/api/admin/", s.requireRole("admin", "Admins", s.handleAdmin))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the API!"})
}

func (s *Server) handleAdmin(w http.ResponseWriter, _ *http.Request, _ identity.Claims) {
	notFound(w, "not found")
}

// auth wrappers
type claimsHandler func(http.ResponseWriter, *http.Request, identity.Claims)

func (s *Server) authenticated(next claimsHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := authToken(r)
		if !ok {
			s.audit(r, "api.authorize", "fail", "reason", "missing_token")
			writeError(w, http.StatusUnauthorized, "Authorization token missing")
			return
		}
		claims, err := s.identity.VerifyIDToken(token)
		if err != nil {
			s.audit(r, "api.authorize", "fail", "reason", "invalid_token")
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		s.audit(r, "api.authorize", "success", "user_id", claims.UID)
		next(w, r, claims)
	})
}

// requireRole gates a route on a single role. The label names the role
// group in the rejection message, e.g. "Employers".
func (s *Server) requireRole(role, label string, next claimsHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := authToken(r)
		if !ok {
			s.audit(r, "api.authorize", "fail", "reason", "missing_token")
			writeError(w, http.StatusUnauthorized, "Authorization token missing")
			return
		}
		claims, err := s.identity.VerifyIDToken(token)
		if err != nil {
			s.audit(r, "api.authorize", "fail", "reason", "invalid_token")
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if claims.Role == "" || strings.ToLower(claims.Role) != role {
			s.audit(r, "api.authorize", "fail", "user_id", claims.UID, "reason", "wrong_role")
			writeError(w, http.StatusForbidden, "Access denied: "+label+" only")
			return
		}
		s.audit(r, "api.authorize", "success", "user_id", claims.UID)
		next(w, r, claims)
	})
}

// authToken extracts the token from the Authorization header. Any
// two-part header value is accepted; the second part is the token.
func authToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusNotFound, msg)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func normalizeMaxBytes(value int64) int64 {
	if value <= 0 {
		return 50 * 1024 * 1024
	}
	return value
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r, nil),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + util.ClientIP(r, nil)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}
