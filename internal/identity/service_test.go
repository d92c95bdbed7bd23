package identity

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"bluecollarconnect/pkg/domain"
)

type memAccounts struct {
	byUID map[string]domain.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byUID: make(map[string]domain.Account)}
}

func (m *memAccounts) SaveAccount(a domain.Account) error {
	m.byUID[a.UID] = a
	return nil
}

func (m *memAccounts) GetAccountByEmail(email string) (domain.Account, bool, error) {
	for _, a := range m.byUID {
		if a.Email == email {
			return a, true, nil
		}
	}
	return domain.Account{}, false, nil
}

func (m *memAccounts) GetAccountByID(uid string) (domain.Account, bool, error) {
	a, ok := m.byUID[uid]
	return a, ok, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	svc, err := NewService(Config{
		Accounts:   newMemAccounts(),
		Revoker:    NewMemoryRevoker(),
		PrivateKey: key,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateUserAndDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	uid, err := svc.CreateUser("Worker@Example.com", "secret")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if uid == "" {
		t.Fatal("uid should not be empty")
	}
	if _, err := svc.CreateUser("worker@example.com", "other"); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("duplicate email err = %v, want ErrEmailAlreadyExists", err)
	}
	if _, err := svc.CreateUser("", "pw"); !errors.Is(err, ErrEmailAndPasswordRequired) {
		t.Fatalf("empty email err = %v", err)
	}
}

func TestSetRoleClaimLowercasesAndMintEmbedsRole(t *testing.T) {
	svc := newTestService(t)
	uid, err := svc.CreateUser("w@example.com", "pw")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := svc.SetRoleClaim(uid, "Worker"); err != nil {
		t.Fatalf("set role: %v", err)
	}
	role, err := svc.RoleClaim(uid)
	if err != nil {
		t.Fatalf("role claim: %v", err)
	}
	if role != "worker" {
		t.Fatalf("role = %q, want %q", role, "worker")
	}
	token, err := svc.MintIDToken(uid)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	claims, err := svc.VerifyIDToken(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.UID != uid || claims.Role != "worker" || claims.Email != "w@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestRoleClaimWithoutRole(t *testing.T) {
	svc := newTestService(t)
	uid, err := svc.CreateUser("norole@example.com", "pw")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := svc.RoleClaim(uid); !errors.Is(err, ErrRoleNotSet) {
		t.Fatalf("err = %v, want ErrRoleNotSet", err)
	}
	if _, err := svc.RoleClaim("missing-uid"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestVerifyIDTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(t)
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.VerifyIDToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q err = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestVerifyIDTokenRejectsForeignKey(t *testing.T) {
	svc := newTestService(t)
	other := newTestService(t)
	uid, err := other.CreateUser("x@example.com", "pw")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := other.MintIDToken(uid)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	if _, err := svc.VerifyIDToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign-key token err = %v, want ErrInvalidToken", err)
	}
}

func TestRevokeRefreshTokensInvalidatesEarlierTokens(t *testing.T) {
	svc := newTestService(t)
	uid, err := svc.CreateUser("r@example.com", "pw")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := svc.MintIDToken(uid)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	if _, err := svc.VerifyIDToken(token); err != nil {
		t.Fatalf("verify before revoke: %v", err)
	}
	// Make sure the revocation cutoff lands strictly after the token's
	// second-granularity issued-at claim.
	time.Sleep(1100 * time.Millisecond)
	if err := svc.RevokeRefreshTokens(uid); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.VerifyIDToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("verify after revoke err = %v, want ErrInvalidToken", err)
	}
	time.Sleep(1100 * time.Millisecond)
	later, err := svc.MintIDToken(uid)
	if err != nil {
		t.Fatalf("mint after revoke: %v", err)
	}
	if _, err := svc.VerifyIDToken(later); err != nil {
		t.Fatalf("token minted after revoke should verify: %v", err)
	}
}

func TestRevokeUnknownAccount(t *testing.T) {
	svc := newTestService(t)
	if err := svc.RevokeRefreshTokens("nope"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}
