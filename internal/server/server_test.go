package server

import (
	"crypto/rand"
	"crypto/rsa"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"bluecollarconnect/internal/app"
	"bluecollarconnect/internal/identity"
	"bluecollarconnect/pkg/storage"
	"bluecollarconnect/pkg/store"
)

type testEnv struct {
	srv      *httptest.Server
	store    *store.MemoryStore
	objects  *storage.MemoryObjectStore
	identity *identity.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	st := store.NewMemoryStore()
	objects := storage.NewMemoryObjectStore()
	provider, err := identity.NewService(identity.Config{
		Accounts:   st,
		Revoker:    identity.NewMemoryRevoker(),
		PrivateKey: key,
	})
	if err != nil {
		t.Fatalf("new identity service: %v", err)
	}
	redis := miniredis.RunT(t)
	s, err := New(Config{
		App:       app.New(st, objects),
		Identity:  provider,
		RedisAddr: redis.Addr(),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, store: st, objects: objects, identity: provider}
}

// mintToken registers an account with the given role and returns a valid
// ID token for it along with the uid.
func (e *testEnv) mintToken(t *testing.T, email, role string) (string, string) {
	t.Helper()
	uid, err := e.identity.CreateUser(email, "password")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if role != "" {
		if err := e.identity.SetRoleClaim(uid, role); err != nil {
			t.Fatalf("set role: %v", err)
		}
	}
	token, err := e.identity.MintIDToken(uid)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, uid
}

func doRequest(t *testing.T, method, url, token string, body *requestBody) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, url, body.reader)
	} else {
		req, err = http.NewRequest(method, url, nil)
	}
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil && body.contentType != "" {
		req.Header.Set("Content-Type", body.contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

type requestBody struct {
	reader      io.Reader
	contentType string
}
