// Package token signs and verifies identity-claims tokens. Claims are taken
// at face value during verification; the store is never consulted here.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"iamgate.org/internal/iam"
)

// ErrInvalidToken covers every verification failure: bad signature, malformed
// payload, unexpected type, expiry. Callers must not distinguish between them
// in responses.
var ErrInvalidToken = errors.New("invalid token")

// Token type discriminators embedded in claims.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 24 * time.Hour * 14
)

// Claims is the signed payload: identity plus standard registered claims.
type Claims struct {
	Identity  iam.Identity `json:"identity"`
	TokenType string       `json:"token_type"`
	jwt.RegisteredClaims
}

// Codec issues and validates HS256-signed token pairs.
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithAccessTTL overrides the access token lifetime.
func WithAccessTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		if ttl > 0 {
			c.accessTTL = ttl
		}
	}
}

// WithRefreshTTL overrides the refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		if ttl > 0 {
			c.refreshTTL = ttl
		}
	}
}

// WithClock overrides the time source (for tests).
func WithClock(fn func() time.Time) Option {
	return func(c *Codec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewCodec builds a codec signing with the given secret.
func NewCodec(secret, issuer string, opts ...Option) (*Codec, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	c := &Codec{
		secret:     []byte(secret),
		issuer:     strings.TrimSpace(issuer),
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// IssueAccess signs a short-lived access token carrying the identity claims.
func (c *Codec) IssueAccess(identity iam.Identity) (string, time.Time, error) {
	return c.issue(identity, TypeAccess, c.accessTTL)
}

// IssueRefresh signs a long-lived refresh token carrying the identity claims.
func (c *Codec) IssueRefresh(identity iam.Identity) (string, time.Time, error) {
	return c.issue(identity, TypeRefresh, c.refreshTTL)
}

func (c *Codec) issue(identity iam.Identity, tokenType string, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(identity.ID) == "" {
		return "", time.Time{}, errors.New("token: identity id is required")
	}
	now := c.now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		Identity:  identity,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify validates signature, expiry and issuer and returns the claims.
func (c *Codec) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if c.issuer != "" && claims.Issuer != c.issuer {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != TypeAccess && claims.TokenType != TypeRefresh {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Identity.ID) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyAccess validates the token and requires the access type.
func (c *Codec) VerifyAccess(raw string) (*Claims, error) {
	claims, err := c.Verify(raw)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
