package credential

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Roles recognized by the platform. RoleDefault applies when a record
// carries no role.
const (
	RolePlayer  = "Player"
	RoleAdmin   = "Admin"
	RoleReferee = "Referee"

	RoleDefault = RolePlayer
)

// Record is one user's credential row. Identity fields are immutable; the
// password hash and the refresh-secret pair are the only mutable state.
// RefreshSecretHash and RefreshSecretExpiresAt are set and cleared together.
type Record struct {
	ID           string
	Username     string
	Role         string
	PasswordHash string

	RefreshSecretHash      *string
	RefreshSecretExpiresAt *time.Time

	CreatedAt time.Time
}

// EffectiveRole returns the record's role, or RoleDefault when unset.
func (r Record) EffectiveRole() string {
	if r.Role == "" {
		return RoleDefault
	}
	return r.Role
}

// NewID returns a fresh record ID (26-char ULID).
func NewID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
