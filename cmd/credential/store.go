package credential

import (
	"context"
	"time"
)

// VerifySecret reports whether plain matches a stored salted hash.
// Implementations must never panic on malformed hashes; an error means the
// candidate simply does not match.
type VerifySecret func(plain, hash string) (bool, error)

// Store abstracts the external credential store.
//
// Implementations must make each call appear atomic to the caller, carry the
// request context (with a timeout) into every round trip, and report
// transport failures as ErrUnavailable.
type Store interface {
	// FindByUsername returns the record for username, or ErrNotFound.
	FindByUsername(ctx context.Context, username string) (Record, error)

	// FindByRefreshSecret returns the record whose stored refresh hash
	// matches plain, or ErrNotFound. It scans all records holding a
	// non-null hash and runs verify against each (see the package doc for
	// why this is O(active-sessions)). Expiry is NOT checked here and an
	// expired record is left untouched; the caller decides what an expired
	// match means.
	FindByRefreshSecret(ctx context.Context, plain string, verify VerifySecret) (Record, error)

	// SetRefreshSecret unconditionally overwrites the user's refresh hash
	// and expiry. Passing (nil, nil) revokes; revoking an already-revoked
	// user is a no-op success.
	SetRefreshSecret(ctx context.Context, userID string, hash *string, expiresAt *time.Time) error

	// ReplaceRefreshSecret installs a new hash and expiry only if the
	// stored hash still equals observedHash, so concurrent rotations of
	// the same secret are linearized: exactly one wins, the others get
	// ErrConflict.
	ReplaceRefreshSecret(ctx context.Context, userID, observedHash, newHash string, expiresAt time.Time) error
}
