package password

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Params controls Argon2id cost. Memory is in KiB, as argon2.IDKey expects.
type Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Config is the hashing configuration plus the length policy applied to
// plaintext inputs before hashing.
type Config struct {
	Params    Params
	MinLength int
	MaxLength int
}

// DefaultConfig returns a conservative baseline. Parallelism follows the
// host CPU count, clamped to [1..4] so containers stay predictable.
func DefaultConfig() Config {
	threads := runtime.NumCPU()
	if threads < 1 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Config{
		Params: Params{
			MemoryKiB:   64 * 1024,
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4] above.
			SaltLength:  16,
			KeyLength:   32,
		},
		MinLength: 8,
		MaxLength: 256,
	}
}

// FromEnv loads Config from COURTSIDE_ARGON2_* / COURTSIDE_PASSWORD_*
// environment variables on top of DefaultConfig. Out-of-range values are
// errors, not silent fallbacks: hashing cost is security configuration.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	var err error
	if cfg.MinLength, err = envInt("COURTSIDE_PASSWORD_MIN_LEN", cfg.MinLength, 1, 1024); err != nil {
		return Config{}, err
	}
	if cfg.MaxLength, err = envInt("COURTSIDE_PASSWORD_MAX_LEN", cfg.MaxLength, 1, 4096); err != nil {
		return Config{}, err
	}
	if cfg.Params.MemoryKiB, err = envUint32("COURTSIDE_ARGON2_MEMORY_KIB", cfg.Params.MemoryKiB, 8*1024, 1024*1024); err != nil {
		return Config{}, err
	}
	if cfg.Params.Iterations, err = envUint32("COURTSIDE_ARGON2_ITERATIONS", cfg.Params.Iterations, 1, 20); err != nil {
		return Config{}, err
	}
	par, err := envUint32("COURTSIDE_ARGON2_PARALLELISM", uint32(cfg.Params.Parallelism), 1, 64)
	if err != nil {
		return Config{}, err
	}
	cfg.Params.Parallelism = uint8(par) // #nosec G115 -- bounded to [1..64] above.
	if cfg.Params.SaltLength, err = envUint32("COURTSIDE_ARGON2_SALT_LEN", cfg.Params.SaltLength, 8, 64); err != nil {
		return Config{}, err
	}
	if cfg.Params.KeyLength, err = envUint32("COURTSIDE_ARGON2_KEY_LEN", cfg.Params.KeyLength, 16, 64); err != nil {
		return Config{}, err
	}

	if cfg.MinLength > cfg.MaxLength {
		return Config{}, fmt.Errorf("password policy invalid: min_len(%d) > max_len(%d)", cfg.MinLength, cfg.MaxLength)
	}

	return cfg, nil
}

func envInt(key string, def, minVal, maxVal int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: not an integer", key)
	}
	if n < minVal || n > maxVal {
		return 0, fmt.Errorf("%s: out of range [%d..%d]", key, minVal, maxVal)
	}
	return n, nil
}

func envUint32(key string, def, minVal, maxVal uint32) (uint32, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	u, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: not an unsigned integer", key)
	}
	n := uint32(u)
	if n < minVal || n > maxVal {
		return 0, fmt.Errorf("%s: out of range [%d..%d]", key, minVal, maxVal)
	}
	return n, nil
}
