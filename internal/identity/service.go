package identity

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"bluecollarconnect/internal/util"
	"bluecollarconnect/pkg/domain"
)

const (
	defaultIssuer   = "bluecollar-identity"
	defaultAudience = "bluecollar-api"
	defaultTokenTTL = time.Hour
	defaultLeeway   = 30 * time.Second
	defaultKeyID    = "identity-active"
)

// Config wires the identity service.
type Config struct {
	Accounts AccountStore
	Revoker  Revoker

	// PrivateKey takes precedence over PrivateKeyPath when set (tests).
	PrivateKey     *rsa.PrivateKey
	PrivateKeyPath string
	KeyID          string
	// VerifyKeyPaths maps kid -> public key PEM path for previous keys.
	VerifyKeyPaths map[string]string

	Issuer   string
	Audience string
	TokenTTL time.Duration
	Leeway   time.Duration
}

// Service is the identity provider: account registry plus RS256 ID tokens.
type Service struct {
	accounts AccountStore
	revoker  Revoker

	signer    *rsa.PrivateKey
	signerKid string
	verifiers map[string]*rsa.PublicKey

	issuer   string
	audience string
	tokenTTL time.Duration
	leeway   time.Duration
}

// NewService constructs the identity service. A signing key is required;
// a missing credential is a startup failure, not a request-time one.
func NewService(cfg Config) (*Service, error) {
	if cfg.Accounts == nil {
		return nil, errors.New("identity: account store is required")
	}
	if cfg.Revoker == nil {
		return nil, errors.New("identity: revoker is required")
	}

	signer := cfg.PrivateKey
	if signer == nil {
		if strings.TrimSpace(cfg.PrivateKeyPath) == "" {
			return nil, errors.New("identity: signing key is required")
		}
		var err error
		signer, err = loadRSAPrivateKeyFromPEMFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("identity: load signing key: %w", err)
		}
	}

	kid := strings.TrimSpace(cfg.KeyID)
	if kid == "" {
		kid = defaultKeyID
	}
	verifiers := map[string]*rsa.PublicKey{kid: &signer.PublicKey}
	for extraKid, path := range cfg.VerifyKeyPaths {
		extraKid = strings.TrimSpace(extraKid)
		path = strings.TrimSpace(path)
		if extraKid == "" || path == "" {
			continue
		}
		pub, err := loadRSAPublicKeyFromPEMFile(path)
		if err != nil {
			return nil, fmt.Errorf("identity: load verify key %q: %w", extraKid, err)
		}
		verifiers[extraKid] = pub
	}

	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = defaultIssuer
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = defaultAudience
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	leeway := cfg.Leeway
	if leeway <= 0 {
		leeway = defaultLeeway
	}

	return &Service{
		accounts:  cfg.Accounts,
		revoker:   cfg.Revoker,
		signer:    signer,
		signerKid: kid,
		verifiers: verifiers,
		issuer:    issuer,
		audience:  audience,
		tokenTTL:  ttl,
		leeway:    leeway,
	}, nil
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// CreateUser registers an account and returns its uid. The role claim is set
// separately so signup mirrors the create-then-claim sequence.
func (s *Service) CreateUser(email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", ErrEmailAndPasswordRequired
	}
	_, exists, err := s.accounts.GetAccountByEmail(email)
	if err != nil {
		return "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return "", ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	account := domain.Account{
		UID:          util.NewID(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.SaveAccount(account); err != nil {
		return "", fmt.Errorf("save account: %w", err)
	}
	return account.UID, nil
}

// SetRoleClaim stores the custom role claim, lowercased. Any non-empty role
// string is accepted; the three marketplace roles are conventions, not an
// enum enforced here.
func (s *Service) SetRoleClaim(uid, role string) error {
	role = strings.TrimSpace(strings.ToLower(role))
	if role == "" {
		return ErrRoleRequired
	}
	account, ok, err := s.accounts.GetAccountByID(uid)
	if err != nil {
		return fmt.Errorf("fetch account: %w", err)
	}
	if !ok {
		return ErrAccountNotFound
	}
	account.Role = role
	account.UpdatedAt = time.Now().UTC()
	if err := s.accounts.SaveAccount(account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

// RoleClaim returns the stored role claim for an account.
func (s *Service) RoleClaim(uid string) (string, error) {
	account, ok, err := s.accounts.GetAccountByID(uid)
	if err != nil {
		return "", fmt.Errorf("fetch account: %w", err)
	}
	if !ok {
		return "", ErrAccountNotFound
	}
	if strings.TrimSpace(account.Role) == "" {
		return "", ErrRoleNotSet
	}
	return account.Role, nil
}

// MintIDToken issues a signed ID token for an existing account, embedding
// the email and role claims current at mint time.
func (s *Service) MintIDToken(uid string) (string, error) {
	account, ok, err := s.accounts.GetAccountByID(uid)
	if err != nil {
		return "", fmt.Errorf("fetch account: %w", err)
	}
	if !ok {
		return "", ErrAccountNotFound
	}
	now := time.Now().UTC()
	claims := idTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.UID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
		Email: account.Email,
		Role:  account.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.signerKid
	return token.SignedString(s.signer)
}

// VerifyIDToken validates a bearer credential and extracts its claims.
// Every failure mode collapses into ErrInvalidToken.
func (s *Service) VerifyIDToken(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrInvalidToken
	}
	claims := idTokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		pub, ok := s.verifiers[strings.TrimSpace(kid)]
		if !ok {
			return nil, errors.New("unknown token key")
		}
		return pub, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(s.leeway),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	uid := strings.TrimSpace(claims.Subject)
	if uid == "" {
		return Claims{}, ErrInvalidToken
	}

	cutoff, revoked, err := s.revoker.RevokedSince(uid)
	if err != nil {
		return Claims{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		if claims.IssuedAt == nil || !claims.IssuedAt.Time.UTC().After(cutoff) {
			return Claims{}, ErrInvalidToken
		}
	}

	return Claims{
		UID:   uid,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}

// RevokeRefreshTokens invalidates every token issued to the account so far.
func (s *Service) RevokeRefreshTokens(uid string) error {
	_, ok, err := s.accounts.GetAccountByID(uid)
	if err != nil {
		return fmt.Errorf("fetch account: %w", err)
	}
	if !ok {
		return ErrAccountNotFound
	}
	return s.revoker.Revoke(uid, time.Now().UTC(), s.tokenTTL)
}

func loadRSAPrivateKeyFromPEMFile(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("invalid pem")
	}
	if pkcs1, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return pkcs1, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	privateKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not rsa")
	}
	return privateKey, nil
}

func loadRSAPublicKeyFromPEMFile(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("invalid pem")
	}
	if pubAny, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		pub, ok := pubAny.(*rsa.PublicKey)
		if !ok {
			return nil, errors.New("public key is not rsa")
		}
		return pub, nil
	}
	if cert, err := x509.ParseCertificate(block.Bytes); err == nil {
		pub, ok := cert.PublicKey.(*rsa.PublicKey)
		if !ok {
			return nil, errors.New("certificate public key is not rsa")
		}
		return pub, nil
	}
	return nil, errors.New("failed to parse rsa public key")
}
