package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Per-operation deadline applied by the Postgres credential store.
	StoreTimeout time.Duration

	// If true, /readyz returns 503 unless the DB is configured and reachable.
	ReadinessRequireDB bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("COURTSIDE_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("COURTSIDE_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("COURTSIDE_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("COURTSIDE_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("COURTSIDE_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("COURTSIDE_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("COURTSIDE_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("COURTSIDE_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("COURTSIDE_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("COURTSIDE_DB_MIN_CONNS", 0),

		StoreTimeout: EnvDuration("COURTSIDE_STORE_TIMEOUT", 5*time.Second),

		ReadinessRequireDB: EnvBool("COURTSIDE_READINESS_REQUIRE_DB", false),
	}
}
