package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/charsheet-go/internal/dependencies/clock"
	"github.com/mcoot/charsheet-go/internal/model"
)

// DefaultTTL is how long an issued token stays valid
const DefaultTTL = 12 * time.Hour

// ErrInvalidSecret is returned when the configured signing secret cannot be used
var ErrInvalidSecret = errors.New("token secret must be non-empty base64")

// Config holds configuration for the token service
type Config struct {
	// Secret is the base64-encoded HMAC key
	Secret string
	TTL    time.Duration
}

// claims is the signed payload. The subject carries the login handle.
type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// Service issues and verifies signed identity tokens.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	key   []byte
	ttl   time.Duration
	clock clock.Clock
}

// New creates a token service, decoding the configured secret into raw key bytes
func New(cfg Config, clk clock.Clock) (*Service, error) {
	key, err := decodeSecret(cfg.Secret)
	if err != nil {
		return nil, err
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Service{
		key:   key,
		ttl:   cfg.TTL,
		clock: clk,
	}, nil
}

// TTL returns the validity window of issued tokens
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the principal and returns it with its expiry
func (s *Service) Issue(p model.Principal) (string, time.Time, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.ttl)

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: p.ID.String(),
		Name:   p.Name.String(),
		Role:   p.Role.String(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry and returns the login handle the token was issued for.
// Every failure is reported as model.ErrInvalidToken; expired and tampered tokens are
// deliberately indistinguishable. No leeway is applied to the expiry check.
func (s *Service) Verify(tokenString string) (string, error) {
	var parsed claims
	_, err := jwt.ParseWithClaims(tokenString, &parsed, func(t *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrInvalidToken, err)
	}

	if parsed.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", model.ErrInvalidToken)
	}
	return parsed.Subject, nil
}

// decodeSecret accepts padded or unpadded standard base64
func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrInvalidSecret
	}
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		key, err = base64.RawStdEncoding.DecodeString(secret)
	}
	if err != nil || len(key) == 0 {
		return nil, ErrInvalidSecret
	}
	return key, nil
}
