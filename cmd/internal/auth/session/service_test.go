package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"courtside/cmd/credential"
	"courtside/cmd/security/password"
)

func testHasher() password.Config {
	return password.Config{
		Params: password.Params{
			MemoryKiB:   8 * 1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
		MinLength: 8,
		MaxLength: 1024,
	}
}

func testServiceConfig() Config {
	cfg := DefaultConfig()
	cfg.SigningKey = testSigningKey
	return cfg
}

func newTestService(t *testing.T) (*Service, *credential.MemoryStore) {
	t.Helper()
	store := credential.NewMemoryStore()
	svc, err := NewService(testServiceConfig(), store, testHasher())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func seedUser(t *testing.T, store *credential.MemoryStore, username, pass, role string) credential.Record {
	t.Helper()
	hash, err := testHasher().Hash(pass)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	rec, err := store.Insert(credential.Record{
		Username:     username,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return rec
}

func TestAuthenticateIssuesVerifiablePair(t *testing.T) {
	svc, store := newTestService(t)
	rec := seedUser(t, store, "alice", "Secret#2x-pw", credential.RoleReferee)

	ctx := context.Background()
	now := time.Now().UTC()

	pair, err := svc.Authenticate(ctx, now, "alice", "Secret#2x-pw")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("empty pair: %+v", pair)
	}

	claims, err := svc.VerifyAccess(pair.AccessToken, now)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.UserID != rec.ID || claims.Username != "alice" || claims.Role != credential.RoleReferee {
		t.Fatalf("wrong claims: %+v", claims)
	}

	// The store now holds a hash (not the plaintext) plus a future expiry.
	stored, err := store.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if stored.RefreshSecretHash == nil || *stored.RefreshSecretHash == pair.RefreshToken {
		t.Fatal("refresh secret must be stored only as a hash")
	}
	if stored.RefreshSecretExpiresAt == nil || !stored.RefreshSecretExpiresAt.After(now) {
		t.Fatal("refresh expiry missing or in the past")
	}
}

func TestAuthenticateUnauthorizedIsIndistinguishable(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(t, store, "alice", "Secret#2x-pw", "")

	ctx := context.Background()
	now := time.Now().UTC()

	_, wrongPass := svc.Authenticate(ctx, now, "alice", "not-the-password")
	_, unknownUser := svc.Authenticate(ctx, now, "mallory", "not-the-password")

	if !errors.Is(wrongPass, ErrUnauthorized) || !errors.Is(unknownUser, ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized for both, got %v / %v", wrongPass, unknownUser)
	}
	if wrongPass.Error() != unknownUser.Error() {
		t.Fatal("unauthorized causes must be indistinguishable")
	}
}

func TestRefreshRotatesSecret(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(t, store, "alice", "Secret#2x-pw", "")

	ctx := context.Background()
	now := time.Now().UTC()

	first, err := svc.Authenticate(ctx, now, "alice", "Secret#2x-pw")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	second, err := svc.Refresh(ctx, now, first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("refresh must rotate the secret")
	}
	if second.AccessToken == "" {
		t.Fatal("missing access token after refresh")
	}

	// Replaying the consumed secret must fail.
	if _, err := svc.Refresh(ctx, now, first.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("replay: want ErrUnauthorized, got %v", err)
	}

	// The rotated secret keeps working.
	if _, err := svc.Refresh(ctx, now, second.RefreshToken); err != nil {
		t.Fatalf("rotated secret rejected: %v", err)
	}
}

func TestRefreshExpiredSecret(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(t, store, "alice", "Secret#2x-pw", "")

	ctx := context.Background()
	issued := time.Now().UTC()

	pair, err := svc.Authenticate(ctx, issued, "alice", "Secret#2x-pw")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	// Past the refresh TTL the hash still matches, but refresh must fail.
	later := issued.Add(8 * 24 * time.Hour)
	if _, err := svc.Refresh(ctx, later, pair.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}

	// The expired record is left inert, not cleared.
	stored, err := store.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if stored.RefreshSecretHash == nil {
		t.Fatal("expired record must be left as-is by the read path")
	}
}

func TestRevoke(t *testing.T) {
	svc, store := newTestService(t)
	rec := seedUser(t, store, "alice", "Secret#2x-pw", "")

	ctx := context.Background()
	now := time.Now().UTC()

	pair, err := svc.Authenticate(ctx, now, "alice", "Secret#2x-pw")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	if err := svc.Revoke(ctx, rec.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := svc.Refresh(ctx, now, pair.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("refresh after revoke: want ErrUnauthorized, got %v", err)
	}

	// Idempotent: revoking again, or revoking an unknown user, succeeds.
	if err := svc.Revoke(ctx, rec.ID); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}
	if err := svc.Revoke(ctx, "no-such-user"); err != nil {
		t.Fatalf("Revoke unknown user: %v", err)
	}
}

func TestMalformedInputFailsClosed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := svc.Authenticate(ctx, now, "", "x"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("empty username: %v", err)
	}
	if _, err := svc.Authenticate(ctx, now, "alice", ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("empty password: %v", err)
	}
	if _, err := svc.Refresh(ctx, now, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("empty secret: %v", err)
	}
}

// failingStore reports every operation as a transient outage.
type failingStore struct{}

func (failingStore) FindByUsername(context.Context, string) (credential.Record, error) {
	return credential.Record{}, credential.ErrUnavailable
}

func (failingStore) FindByRefreshSecret(context.Context, string, credential.VerifySecret) (credential.Record, error) {
	return credential.Record{}, credential.ErrUnavailable
}

func (failingStore) SetRefreshSecret(context.Context, string, *string, *time.Time) error {
	return credential.ErrUnavailable
}

func (failingStore) ReplaceRefreshSecret(context.Context, string, string, string, time.Time) error {
	return credential.ErrUnavailable
}

func TestTransientFailureIsNotUnauthorized(t *testing.T) {
	svc, err := NewService(testServiceConfig(), failingStore{}, testHasher())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx := context.Background()
	now := time.Now().UTC()

	_, err = svc.Authenticate(ctx, now, "alice", "Secret#2x-pw")
	if !errors.Is(err, credential.ErrUnavailable) || errors.Is(err, ErrUnauthorized) {
		t.Fatalf("authenticate during outage: got %v", err)
	}

	_, err = svc.Refresh(ctx, now, "some-refresh-secret-value")
	if !errors.Is(err, credential.ErrUnavailable) || errors.Is(err, ErrUnauthorized) {
		t.Fatalf("refresh during outage: got %v", err)
	}

	if err := svc.Revoke(ctx, "user-id"); !errors.Is(err, credential.ErrUnavailable) {
		t.Fatalf("revoke during outage: got %v", err)
	}
}
