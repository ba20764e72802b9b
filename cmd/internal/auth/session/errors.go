package session

import "errors"

var (
	// ErrUnauthorized is the single failure for every authorization-denying
	// cause: unknown user, wrong password, unknown/expired/revoked refresh
	// secret, lost rotation race. Collapsing them is deliberate; callers
	// must not be able to distinguish one cause from another.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConfig is returned for invalid session configuration.
	ErrConfig = errors.New("invalid session config")
)
