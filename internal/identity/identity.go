package identity

import (
	"errors"

	"bluecollarconnect/pkg/domain"
)

// Claims is the decoded identity extracted from a verified ID token.
// Role carries the custom role claim set once at signup; it may be empty
// for accounts created before a role was assigned.
type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Provider is the identity-service surface the API depends on. The concrete
// implementation is a process-wide singleton constructed at startup and safe
// for concurrent use.
type Provider interface {
	VerifyIDToken(token string) (Claims, error)
	CreateUser(email, password string) (string, error)
	SetRoleClaim(uid, role string) error
	RoleClaim(uid string) (string, error)
	RevokeRefreshTokens(uid string) error
}

// AccountStore persists identity accounts.
type AccountStore interface {
	SaveAccount(domain.Account) error
	GetAccountByEmail(email string) (domain.Account, bool, error)
	GetAccountByID(uid string) (domain.Account, bool, error)
}

var (
	// ErrInvalidToken covers every verification failure: missing, malformed,
	// expired, bad signature, or revoked. Callers map it to a single 401.
	ErrInvalidToken = errors.New("invalid or expired token")

	ErrEmailAndPasswordRequired = errors.New("email and password are required")
	ErrEmailAlreadyExists       = errors.New("email already in use")
	ErrAccountNotFound          = errors.New("account not found")
	ErrRoleNotSet               = errors.New("role not set for account")
	ErrRoleRequired             = errors.New("role is required")
)
