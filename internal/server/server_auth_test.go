package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
)

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return payload
}

func TestWelcomeRoute(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.srv.URL + "/api")
	if err != nil {
		t.Fatalf("get welcome: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != "Welcome to the API!" {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestSignUpMissingFields(t *testing.T) {
	env := newTestEnv(t)
	payload := bytes.NewBufferString(`{"email":"a@b.com","password":"pw"}`)
	resp := doRequest(t, http.MethodPost, env.srv.URL+"/api/auth/sign-up", "",
		&requestBody{reader: payload, contentType: "application/json"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "Missing fields: email, password, and role are required." {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestSignUpCreatesUserWithRole(t *testing.T) {
	env := newTestEnv(t)
	payload := bytes.NewBufferString(`{"email":"W@Example.com","password":"pw","role":"Worker"}`)
	resp := doRequest(t, http.MethodPost, env.srv.URL+"/api/auth/sign-up", "",
		&requestBody{reader: payload, contentType: "application/json"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != "User created successfully" {
		t.Fatalf("message = %v", body["message"])
	}
	uid, _ := body["uid"].(string)
	if uid == "" {
		t.Fatal("uid missing from response")
	}
	role, err := env.identity.RoleClaim(uid)
	if err != nil {
		t.Fatalf("role claim: %v", err)
	}
	if role != "worker" {
		t.Fatalf("role = %q, want lowercased worker", role)
	}
}

func TestSignInVerifiesToken(t *testing.T) {
	env := newTestEnv(t)
	token, uid := env.mintToken(t, "signin@example.com", "employer")

	// Missing header.
	resp := doRequest(t, http.MethodGet, env.srv.URL+"/api/auth/sign-in", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing header status = %d, want 401", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "Authorization header missing" {
		t.Fatalf("error = %v", body["error"])
	}

	// Malformed header.
	req, _ := http.NewRequest(http.MethodGet, env.srv.URL+"/api/auth/sign-in", nil)
	req.Header.Set("Authorization", "justonetoken")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("malformed header status = %d, want 401", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["error"] != "Invalid authorization header format" {
		t.Fatalf("error = %v", body["error"])
	}

	// Valid token.
	resp = doRequest(t, http.MethodGet, env.srv.URL+"/api/auth/sign-in", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("valid token status = %d, want 200", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["message"] != "Sign in successful" {
		t.Fatalf("message = %v", body["message"])
	}
	user, _ := body["user"].(map[string]any)
	if user == nil || user["uid"] != uid || user["role"] != "employer" {
		t.Fatalf("user = %v", user)
	}
}

func TestSignOutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.mintToken(t, "signout@example.com", "worker")

	resp := doRequest(t, http.MethodPost, env.srv.URL+"/api/auth/sign-out", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sign-out status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != "User signed out successfully" {
		t.Fatalf("message = %v", body["message"])
	}

	// The revoked token no longer authorizes protected routes.
	resp = doRequest(t, http.MethodGet, env.srv.URL+"/api/community/all", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("revoked token status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestProtectedRouteRejections(t *testing.T) {
	env := newTestEnv(t)

	// Missing token.
	resp := doRequest(t, http.MethodGet, env.srv.URL+"/api/community/all", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d, want 401", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "Authorization token missing" {
		t.Fatalf("error = %v", body["error"])
	}

	// Garbage token.
	resp = doRequest(t, http.MethodGet, env.srv.URL+"/api/community/all", "garbage", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d, want 401", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["error"] != "Unauthorized" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestRoleGates(t *testing.T) {
	env := newTestEnv(t)
	workerToken, _ := env.mintToken(t, "gate-worker@example.com", "worker")
	employerToken, _ := env.mintToken(t, "gate-employer@example.com", "employer")

	// Worker hitting an employer-only route.
	resp := doRequest(t, http.MethodPost, env.srv.URL+"/api/job/create", workerToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("worker on employer route status = %d, want 403", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "Access denied: Employers only" {
		t.Fatalf("error = %v", body["error"])
	}

	// Employer hitting a worker-only route.
	resp = doRequest(t, http.MethodGet, env.srv.URL+"/api/job/all", employerToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("employer on worker route status = %d, want 403", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["error"] != "Access denied: Workers only" {
		t.Fatalf("error = %v", body["error"])
	}

	// Non-admin hitting the admin namespace.
	resp = doRequest(t, http.MethodGet, env.srv.URL+"/api/admin/anything", workerToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("worker on admin route status = %d, want 403", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["error"] != "Access denied: Admins only" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestSignUpRateLimited(t *testing.T) {
	env := newTestEnv(t)
	var last int
	for i := 0; i < 7; i++ {
		payload := bytes.NewBufferString(`{"email":"","password":"","role":""}`)
		resp := doRequest(t, http.MethodPost, env.srv.URL+"/api/auth/sign-up", "",
			&requestBody{reader: payload, contentType: "application/json"})
		last = resp.StatusCode
		resp.Body.Close()
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("seventh signup status = %d, want 429", last)
	}
}
