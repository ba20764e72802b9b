package password

import "errors"

var (
	// ErrInvalidHash is returned when an encoded hash is malformed,
	// unsupported, or outside the verification cost bounds.
	ErrInvalidHash = errors.New("invalid argon2id hash")

	// ErrTooShort is returned when the plaintext is below the configured minimum.
	ErrTooShort = errors.New("plaintext too short")

	// ErrTooLong is returned when the plaintext exceeds the configured maximum.
	ErrTooLong = errors.New("plaintext too long")
)
