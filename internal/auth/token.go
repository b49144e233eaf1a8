package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harrylevesque/stillwater/internal/crypto"
	"github.com/harrylevesque/stillwater/internal/models"
)

var (
	// ErrUnauthenticated is returned when no valid session exists. Every other
	// verification error wraps it.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrMissingToken    = fmt.Errorf("%w: missing token", ErrUnauthenticated)
	ErrMalformedToken  = fmt.Errorf("%w: malformed token", ErrUnauthenticated)
	ErrTokenExpired    = fmt.Errorf("%w: token expired", ErrUnauthenticated)
)

const tokenKeyInfo = "stillwater/session-token/v1"

// tokenAD binds sealed tokens to their purpose.
var tokenAD = []byte("stillwater-token")

// Provider verifies a session token and returns its user.
type Provider interface {
	VerifyToken(ctx context.Context, token string) (*models.User, error)
}

type claims struct {
	Subject   string `json:"sub"`
	GivenName string `json:"given_name"`
	Picture   string `json:"picture,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// TokenService issues and verifies opaque session tokens sealed with a key
// derived from the server master key.
type TokenService struct {
	key []byte
	now func() time.Time
}

func NewTokenService(masterKey []byte) (*TokenService, error) {
	key, err := crypto.DeriveKey(masterKey, tokenKeyInfo)
	if err != nil {
		return nil, fmt.Errorf("derive token key: %w", err)
	}
	return &TokenService{key: key, now: time.Now}, nil
}

// Issue mints a token for user valid for ttl.
func (s *TokenService) Issue(user models.User, ttl time.Duration) (string, error) {
	if user.Subject == "" {
		return "", errors.New("token subject is required")
	}
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}
	now := s.now()
	plain, err := json.Marshal(claims{
		Subject:   user.Subject,
		GivenName: user.GivenName,
		Picture:   user.PictureURL,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	})
	if err != nil {
		return "", err
	}
	sealed, err := crypto.Seal(s.key, plain, tokenAD)
	if err != nil {
		return "", fmt.Errorf("seal token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// VerifyToken implements Provider.
func (s *TokenService) VerifyToken(_ context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	sealed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrMalformedToken
	}
	plain, err := crypto.Open(s.key, sealed, tokenAD)
	if err != nil {
		return nil, ErrMalformedToken
	}
	var c claims
	if err := json.Unmarshal(plain, &c); err != nil || c.Subject == "" {
		return nil, ErrMalformedToken
	}
	if !s.now().Before(time.Unix(c.ExpiresAt, 0)) {
		return nil, ErrTokenExpired
	}
	return &models.User{
		Subject:    c.Subject,
		GivenName:  c.GivenName,
		PictureURL: c.Picture,
	}, nil
}
