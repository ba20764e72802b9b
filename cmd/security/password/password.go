package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// argon2.Version is 0x13; PHC strings carry it in decimal.
const phcVersion = 19

// Hash hashes plain with Argon2id and a fresh random salt, returning a PHC
// string: $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<key_b64>.
func (c Config) Hash(plain string) (string, error) {
	if len(plain) < c.MinLength {
		return "", ErrTooShort
	}
	if c.MaxLength > 0 && len(plain) > c.MaxLength {
		return "", ErrTooLong
	}

	salt := make([]byte, c.Params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey([]byte(plain), salt, c.Params.Iterations, c.Params.MemoryKiB, c.Params.Parallelism, c.Params.KeyLength)

	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		phcVersion,
		c.Params.MemoryKiB, c.Params.Iterations, c.Params.Parallelism,
		enc.EncodeToString(salt), enc.EncodeToString(key),
	), nil
}

// Verify reports whether plain matches encoded. Mismatch is (false, nil);
// malformed or out-of-bounds hashes are (false, ErrInvalidHash) and never
// panic, so a corrupt stored hash degrades to a failed login.
func (c Config) Verify(plain, encoded string) (bool, error) {
	params, salt, want, err := decodePHC(encoded)
	if err != nil {
		return false, err
	}

	// Refuse hashes whose cost exceeds twice the configured ceiling: a stored
	// hash is trusted data, but this keeps a bad migration or a hostile store
	// from pinning CPU and memory during verification.
	if !verifiable(params, c.Params) {
		return false, ErrInvalidHash
	}

	got := argon2.IDKey([]byte(plain), salt, params.Iterations, params.MemoryKiB, params.Parallelism, uint32(len(want))) // #nosec G115 -- length bounded by decodePHC.

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func verifiable(got, limit Params) bool {
	switch {
	case got.MemoryKiB > limit.MemoryKiB*2,
		got.Iterations > limit.Iterations*2,
		got.Parallelism > limit.Parallelism*2,
		got.SaltLength < 8 || got.SaltLength > 64,
		got.KeyLength < 16 || got.KeyLength > 128:
		return false
	}
	return true
}

func decodePHC(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrInvalidHash
	}
	if parts[2] != fmt.Sprintf("v=%d", phcVersion) {
		return Params{}, nil, nil, ErrInvalidHash
	}

	var mem, it, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &it, &par); err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}
	if mem == 0 || it == 0 || par == 0 || par > 255 {
		return Params{}, nil, nil, ErrInvalidHash
	}

	enc := base64.RawStdEncoding
	salt, err := enc.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}
	key, err := enc.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}

	params := Params{
		MemoryKiB:   mem,
		Iterations:  it,
		Parallelism: uint8(par),        // #nosec G115 -- par <= 255 checked above.
		SaltLength:  uint32(len(salt)), // #nosec G115 -- base64 input length is bounded by verifiable().
		KeyLength:   uint32(len(key)),  // #nosec G115 -- base64 input length is bounded by verifiable().
	}
	return params, salt, key, nil
}
