package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"courtside/cmd/credential"
	"courtside/cmd/security/password"
	"courtside/cmd/security/token"
)

// Refresh secrets are 86+ base64 characters; anything beyond this bound is
// not a secret we ever issued.
const maxRefreshSecretLen = 1024

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Service implements login, refresh and revoke over the credential store.
//
// Failure semantics are fail-closed: every authorization-denying cause maps
// to ErrUnauthorized, transient store faults pass through as
// credential.ErrUnavailable, and the store write is always the last step,
// so a failure never leaves the store mutated or a pair partially issued.
type Service struct {
	cfg    Config
	creds  credential.Store
	hasher password.Config
	tokens *token.Manager

	// dummyHash absorbs password verification time when the username is
	// unknown, so the two unauthorized paths stay indistinguishable.
	dummyHash string
}

// NewService constructs a Service. The token manager is built from cfg.
func NewService(cfg Config, creds credential.Store, hasher password.Config) (*Service, error) {
	if creds == nil {
		return nil, errors.New("session: nil credential store")
	}

	tokens, err := token.NewHS256Manager([]byte(cfg.SigningKey), cfg.Issuer, cfg.Audience, cfg.AccessTokenTTL, cfg.ClockSkew)
	if err != nil {
		return nil, ErrConfig
	}

	s := &Service{cfg: cfg, creds: creds, hasher: hasher, tokens: tokens}

	if h, err := hasher.Hash("dummy-password-for-timing-only"); err == nil {
		s.dummyHash = h
	}

	return s, nil
}

// Authenticate verifies username/password and, on success, issues a token
// pair and persists the refresh-secret hash. Unknown user and wrong
// password are indistinguishable.
func (s *Service) Authenticate(ctx context.Context, now time.Time, username, pass string) (TokenPair, error) {
	username = strings.TrimSpace(username)
	if username == "" || pass == "" {
		return TokenPair{}, ErrUnauthorized
	}

	rec, err := s.creds.FindByUsername(ctx, username)
	if errors.Is(err, credential.ErrNotFound) {
		if s.dummyHash != "" {
			_, _ = s.hasher.Verify(pass, s.dummyHash)
		}
		return TokenPair{}, ErrUnauthorized
	}
	if err != nil {
		return TokenPair{}, err
	}

	ok, err := s.hasher.Verify(pass, rec.PasswordHash)
	if err != nil || !ok {
		return TokenPair{}, ErrUnauthorized
	}

	pair, secretHash, err := s.issuePair(rec, now)
	if err != nil {
		return TokenPair{}, err
	}

	// Persisting the hash is the final step: nothing is mutated on the
	// failure paths above.
	if err := s.creds.SetRefreshSecret(ctx, rec.ID, &secretHash, &pair.RefreshExpiresAt); err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, err
	}

	return pair, nil
}

// Refresh exchanges a refresh secret for a new pair, rotating the secret:
// the old plaintext becomes permanently unusable once the swap commits.
// Expired and revoked sessions, unknown secrets, and lost rotation races
// all collapse into ErrUnauthorized.
func (s *Service) Refresh(ctx context.Context, now time.Time, refreshSecret string) (TokenPair, error) {
	refreshSecret = strings.TrimSpace(refreshSecret)
	if refreshSecret == "" || len(refreshSecret) > maxRefreshSecretLen {
		return TokenPair{}, ErrUnauthorized
	}

	rec, err := s.creds.FindByRefreshSecret(ctx, refreshSecret, s.hasher.Verify)
	if errors.Is(err, credential.ErrNotFound) {
		return TokenPair{}, ErrUnauthorized
	}
	if err != nil {
		return TokenPair{}, err
	}

	// The scan matches on hash alone; expiry is enforced here. An expired
	// record is rejected but left as-is, inert until the next overwrite.
	if rec.RefreshSecretExpiresAt == nil || !rec.RefreshSecretExpiresAt.After(now) {
		return TokenPair{}, ErrUnauthorized
	}

	pair, newHash, err := s.issuePair(rec, now)
	if err != nil {
		return TokenPair{}, err
	}

	// Compare-and-swap on the hash observed by the scan: of two concurrent
	// refreshes with the same secret exactly one commits; the loser is
	// treated as a replay.
	err = s.creds.ReplaceRefreshSecret(ctx, rec.ID, *rec.RefreshSecretHash, newHash, pair.RefreshExpiresAt)
	if errors.Is(err, credential.ErrConflict) || errors.Is(err, credential.ErrNotFound) {
		return TokenPair{}, ErrUnauthorized
	}
	if err != nil {
		return TokenPair{}, err
	}

	return pair, nil
}

// Revoke clears the user's refresh secret, ending their ability to refresh.
// Revoking a user with no live secret, or an unknown user, is a no-op
// success.
func (s *Service) Revoke(ctx context.Context, userID string) error {
	err := s.creds.SetRefreshSecret(ctx, userID, nil, nil)
	if errors.Is(err, credential.ErrNotFound) {
		return nil
	}
	return err
}

// VerifyAccess validates a bearer access token. Tokens are stateless; no
// store call is involved.
func (s *Service) VerifyAccess(tokenString string, now time.Time) (token.AccessClaims, error) {
	claims, err := s.tokens.Verify(tokenString, now)
	if err != nil {
		return token.AccessClaims{}, ErrUnauthorized
	}
	return claims, nil
}

// issuePair builds the client-facing pair plus the refresh-secret hash the
// caller must persist.
func (s *Service) issuePair(rec credential.Record, now time.Time) (TokenPair, string, error) {
	access, accessExp, err := s.tokens.Issue(rec.ID, rec.Username, rec.EffectiveRole(), now)
	if err != nil {
		return TokenPair{}, "", err
	}

	refreshPlain, err := newRefreshSecret(s.cfg.RefreshSecretBytes)
	if err != nil {
		return TokenPair{}, "", err
	}
	refreshHash, err := s.hasher.Hash(refreshPlain)
	if err != nil {
		return TokenPair{}, "", err
	}

	return TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshPlain,
		RefreshExpiresAt: now.Add(s.cfg.RefreshTTL),
	}, refreshHash, nil
}
