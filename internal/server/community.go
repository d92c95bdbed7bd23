package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"bluecollarconnect/internal/app"
	"bluecollarconnect/internal/identity"
)

type createCommunityRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type membershipRequest struct {
	CommunityID string `json:"communityId"`
}

type createPostRequest struct {
	CommunityID string            `json:"communityId"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Metadata    map[string]string `json:"metadata"`
}

type addCommentRequest struct {
	PostID  string `json:"postId"`
	Content string `json:"content"`
}

func (s *Server) handleCreateCommunity(w http.ResponseWriter, r *http.Request, claims identity.Claims) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req createCommunityRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing field: name is required.")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Missing field: name is required.")
		return
	}
	community, err := s.app.CreateCommunity(claims.UID, req.Name, req.Description)
	if err != nil {
		s.audit(r, "api.community.create", "fail", "user_id", claims.UID, "reason", "store_failed")
		writeError(w, http.StatusInternalServerError, "Error creating community")
		return
	}
	s.audit(r, "api.community.create", "success", "user_id", claims.UID, "community_id", community.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "Community created successfully",
		"community": community,
	})
}

func (s *Server) handleJoinCommunity(w http.ResponseWriter, r *http.Request, claims identity.Claims) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req membershipRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil || req.CommunityID == "" {
		writeError(w, http.StatusBadRequest, "Missing field: communityId is required.")
		return
	}
	if err := s.app.JoinCommunity(req.CommunityID, claims.UID); err != nil {
		switch {
		case errors.Is(err, app.ErrCommunityNotFound):
			notFound(w, "Community not found")
		case errors.Is(err, app.ErrAlreadyMember):
			writeError(w, http.StatusBadRequest, "Already a member of this community")
		default:
			writeError(w, http.StatusInternalServerError, "Error joining community")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Joined community successfully"})
}

func (s *Server) handleLeaveCommunity(w http.ResponseWriter, r *http.Request, claims identity.Claims) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req membershipRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil || req.CommunityID == "" {
		writeError(w, http.StatusBadRequest, "Missing field: communityId is required.")
		return
	}
	if err := s.app.LeaveCommunity(req.CommunityID, claims.UID); err != nil {
		switch {
		case errors.Is(err, app.ErrCommunityNotFound):
			notFound(w, "Community not found")
		case errors.Is(err, app.ErrNotMember):
			writeError(w, http.StatusBadRequest, "Not a member of this community")
		default:
			writeError(w, http.StatusInternalServerError, "Error leaving community")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Left community successfully"})
}

// /api/community/joined/{userId}
func (s *Server) handleJoinedCommunities(w http.ResponseWriter, r *http.Request, _ identity.Claims) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	userID := strings.TrimPrefix(r.URL.Path, "/api/community/joined/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "User ID not provided")
		return
	}
	communities, err := s.app.JoinedCommunities(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching communities")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"communities": communities})
}

func (s *Server) handleSearchCommunities(w http.ResponseWriter, r *http.Request, _ identity.Claims) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		writeError(w, http.StatusBadRequest, "Missing query parameter: name is required.")
		return
	}
	communities, err := s.app.SearchCommunities(name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error searching communities")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"communities": communities})
}

func (s *Server) handleAllCommunities(w http.ResponseWriter, r *http.Request, _ identity.Claims) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	communities, err := s.app.ListCommunities()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching communities")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"communities": communities})
}

// /api/community/posts handles POST (create) and GET (?communityId= list).
func (s *Server) handleCommunityPosts(w http.ResponseWriter, r *http.Request, claims identity.Claims) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateCommunityPost(w, r, claims)
	case http.MethodGet:
		communityID := r.URL.Query().Get("communityId")
		if communityID == "" {
			writeError(w, http.StatusBadRequest, "Missing query parameter: communityId is required.")
			return
		}
		posts, err := s.app.CommunityPosts(communityID)
		if err != nil {
			if errors.Is(err, app.ErrCommunityNotFound) {
				notFound(w, "Community not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Error fetching posts")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCreateCommunityPost(w http.ResponseWriter, r *http.Request, claims identity.Claims) {
	var req createPostRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing fields: communityId and title are required.")
		return
	}
	if req.CommunityID == "" || strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "Missing fields: communityId and title are required.")
		return
	}
	post, err := s.app.CreateCommunityPost(req.CommunityID, claims.UID, req.Title, req.Content, req.Metadata)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrCommunityNotFound):
			notFound(w, "Community not found")
		case errors.Is(err, app.ErrNotMember):
			writeError(w, http.StatusForbidden, "Only community members can post")
		default:
			writeError(w, http.StatusInternalServerError, "Error creating post")
		}
		return
	}
	s.audit(r, "api.community.post", "success", "user_id", claims.UID, "post_id", post.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Post created successfully",
		"post":    post,
	})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request, claims identity.Claims) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req addCommentRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing fields: postId and content are required.")
		return
	}
	if req.PostID == "" || strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Missing fields: postId and content are required.")
		return
	}
	comment, err := s.app.AddComment(req.PostID, claims.UID, req.Content)
	if err != nil {
		if errors.Is(err, app.ErrPostNotFound) {
			notFound(w, "Post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error adding comment")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request, _ identity.Claims) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	postID := r.URL.Query().Get("postId")
	if postID == "" {
		writeError(w, http.StatusBadRequest, "Missing query parameter: postId is required.")
		return
	}
	post, comments, err := s.app.GetCommunityPost(postID)
	if err != nil {
		if errors.Is(err, app.ErrPostNotFound) {
			notFound(w, "Post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error fetching post")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"post":     post,
		"comments": comments,
	})
}

func (s *Server) handleJoinedPosts(w http.ResponseWriter, r *http.Request, claims identity.Claims) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = claims.UID
	}
	posts, err := s.app.JoinedCommunityPosts(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching posts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// /api/community/{id}
func (s *Server) handleCommunityByID(w http.ResponseWriter, r *http.Request, _ identity.Claims) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/community/")
	if id == "" || strings.Contains(id, "/") {
		notFound(w, "not found")
		return
	}
	community, err := s.app.GetCommunity(id)
	if err != nil {
		if errors.Is(err, app.ErrCommunityNotFound) {
			notFound(w, "Community not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error fetching community")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"community": community})
}
