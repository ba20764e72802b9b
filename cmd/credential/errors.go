package credential

import "errors"

var (
	// ErrNotFound is returned when no record matches a lookup.
	ErrNotFound = errors.New("credential not found")

	// ErrConflict is returned by ReplaceRefreshSecret when the stored hash
	// no longer matches the observed one: a concurrent rotation or a revoke
	// won the race.
	ErrConflict = errors.New("refresh secret changed concurrently")

	// ErrUnavailable marks a transient store failure (unreachable, timed
	// out). Callers surface it as a retryable infrastructure error, never
	// as an authorization failure.
	ErrUnavailable = errors.New("credential store unavailable")
)
