package session

import (
	"crypto/rand"
	"encoding/base64"
)

// minSecretBytes is the entropy floor for refresh secrets.
const minSecretBytes = 64

// newRefreshSecret returns a fresh opaque refresh secret: nBytes of
// cryptographic randomness, URL-safe base64 without padding. The plaintext
// leaves the server exactly once; only its salted hash is ever stored.
func newRefreshSecret(nBytes int) (string, error) {
	if nBytes < minSecretBytes {
		nBytes = minSecretBytes
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
