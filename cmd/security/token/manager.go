package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyBytes is the floor for the HS256 signing key.
const MinKeyBytes = 32

var (
	// ErrInvalidToken is returned for any verification failure: bad
	// signature, wrong method, wrong issuer or audience, expired, malformed.
	// Callers must not distinguish the causes.
	ErrInvalidToken = errors.New("invalid access token")

	// ErrKeyTooShort is returned when the signing key is below MinKeyBytes.
	ErrKeyTooShort = errors.New("signing key too short")
)

// AccessClaims is the identity envelope carried by a verified access token.
type AccessClaims struct {
	UserID    string
	Username  string
	Role      string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type wireClaims struct {
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 access tokens for a fixed
// issuer/audience pair.
type Manager struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	skew     time.Duration
}

// NewHS256Manager builds a Manager. The key must be at least MinKeyBytes;
// skew is the leeway applied to time-based claims during verification.
func NewHS256Manager(key []byte, issuer, audience string, ttl, skew time.Duration) (*Manager, error) {
	if len(key) < MinKeyBytes {
		return nil, ErrKeyTooShort
	}
	if issuer == "" || audience == "" || ttl <= 0 || skew < 0 {
		return nil, errors.New("token: invalid manager configuration")
	}
	return &Manager{key: key, issuer: issuer, audience: audience, ttl: ttl, skew: skew}, nil
}

// Issue signs an access token for the given principal, expiring at now+TTL.
func (m *Manager) Issue(userID, username, role string, now time.Time) (string, time.Time, error) {
	exp := now.Add(m.ttl)

	claims := wireClaims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses and validates signature, method, issuer, audience and
// lifetime against now. Every failure collapses into ErrInvalidToken.
func (m *Manager) Verify(tokenString string, now time.Time) (AccessClaims, error) {
	claims := &wireClaims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return m.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.skew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !parsed.Valid {
		return AccessClaims{}, ErrInvalidToken
	}

	if claims.Subject == "" {
		return AccessClaims{}, ErrInvalidToken
	}

	out := AccessClaims{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
		Issuer:   claims.Issuer,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
