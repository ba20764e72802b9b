package session

import (
	"os"
	"strconv"
	"time"

	"courtside/cmd/security/token"
)

// Config defines the runtime configuration for the auth session subsystem:
// token signing identity, TTLs, clock-skew tolerance, and refresh-secret
// entropy.
type Config struct {
	// Issuer and Audience are stamped into and validated on access tokens.
	Issuer   string
	Audience string

	// SigningKey is the HS256 key for access tokens. Required, >= 32 bytes.
	SigningKey string

	// AccessTokenTTL is the access-token lifetime (minutes-scale).
	AccessTokenTTL time.Duration

	// RefreshTTL is the refresh-secret lifetime (days-scale).
	RefreshTTL time.Duration

	// ClockSkew is the leeway applied to token time claims.
	ClockSkew time.Duration

	// RefreshSecretBytes is the entropy of a refresh secret before
	// encoding. Never below 64.
	RefreshSecretBytes int
}

// DefaultConfig mirrors the production defaults: 15-minute access tokens,
// 7-day refresh secrets, one minute of clock skew, 64-byte secrets.
func DefaultConfig() Config {
	return Config{
		Issuer:             "courtside",
		Audience:           "courtside-api",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTTL:         7 * 24 * time.Hour,
		ClockSkew:          time.Minute,
		RefreshSecretBytes: 64,
	}
}

// LoadConfigFromEnv loads Config from the environment.
//
// Required:
//   - COURTSIDE_JWT_KEY (>= 32 bytes)
//
// Optional:
//   - COURTSIDE_JWT_ISSUER, COURTSIDE_JWT_AUDIENCE
//   - COURTSIDE_AUTH_ACCESS_TTL, COURTSIDE_AUTH_REFRESH_TTL,
//     COURTSIDE_AUTH_CLOCK_SKEW (Go durations)
//   - COURTSIDE_AUTH_REFRESH_SECRET_BYTES (64..256)
//
// Returns ErrConfig on invalid values; security settings never fall back
// silently.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("COURTSIDE_JWT_ISSUER"); v != "" {
		cfg.Issuer = v
	}
	if v := os.Getenv("COURTSIDE_JWT_AUDIENCE"); v != "" {
		cfg.Audience = v
	}

	if v := os.Getenv("COURTSIDE_AUTH_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.AccessTokenTTL = d
	}
	if v := os.Getenv("COURTSIDE_AUTH_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTTL = d
	}
	if v := os.Getenv("COURTSIDE_AUTH_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.ClockSkew = d
	}
	if v := os.Getenv("COURTSIDE_AUTH_REFRESH_SECRET_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 64 || n > 256 {
			return Config{}, ErrConfig
		}
		cfg.RefreshSecretBytes = n
	}

	cfg.SigningKey = os.Getenv("COURTSIDE_JWT_KEY")
	if len(cfg.SigningKey) < token.MinKeyBytes {
		return Config{}, ErrConfig
	}

	// Refreshing should outlive any single access token.
	if cfg.RefreshTTL <= cfg.AccessTokenTTL {
		return Config{}, ErrConfig
	}

	return cfg, nil
}
