package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is empty")
	ErrInvalidRateLimit   = errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
)

// DefaultSeedNamespace keeps seeded IDs stable across environments.
var DefaultSeedNamespace = uuid.MustParse("3f1c2a52-6b0e-4c3e-9a53-6d2f1f0b8e41")

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// Config holds the service configuration.
type Config struct {
	DatabaseURL string
	Port        string

	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string
	// DBLogLevel is a gorm logger level: silent, error, warn, info.
	DBLogLevel string

	AllowedOrigins []string

	// RateLimitRPS of 0 disables the limiter.
	RateLimitRPS   float64
	RateLimitBurst int

	SeedNamespace uuid.UUID
}

// LoadFromEnv reads configuration from environment variables.
//
// Environment variables:
//   - DATABASE_URL: Postgres DSN (required)
//   - PORT: listen port (default: 5050)
//   - LOG_LEVEL: debug|info|warn|error (default: info)
//   - DB_LOG_LEVEL: silent|error|warn|info (default: warn)
//   - CORS_ALLOWED_ORIGINS: comma separated origins (default: local dev servers)
//   - RATE_LIMIT_RPS / RATE_LIMIT_BURST: per-client token bucket (default: disabled)
//   - SEED_NAMESPACE: UUID namespace for seeded IDs
func LoadFromEnv() (Config, error) {
	cfg := Config{
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Port:           envOr("PORT", "5050"),
		LogLevel:       strings.ToLower(envOr("LOG_LEVEL", "info")),
		DBLogLevel:     strings.ToLower(envOr("DB_LOG_LEVEL", "warn")),
		AllowedOrigins: defaultOrigins,
		SeedNamespace:  DefaultSeedNamespace,
	}

	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); strings.TrimSpace(raw) != "" {
		cfg.AllowedOrigins = splitList(raw)
	}

	if raw := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", raw, err)
		}
		cfg.RateLimitRPS = rps
	}
	if raw := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); raw != "" {
		burst, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RATE_LIMIT_BURST %q: %w", raw, err)
		}
		cfg.RateLimitBurst = burst
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = int(cfg.RateLimitRPS) + 1
	}

	if raw := strings.TrimSpace(os.Getenv("SEED_NAMESPACE")); raw != "" {
		ns, err := uuid.Parse(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SEED_NAMESPACE: %w", err)
		}
		cfg.SeedNamespace = ns
	}

	return cfg, nil
}

// Validate checks the settings every entrypoint needs.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
