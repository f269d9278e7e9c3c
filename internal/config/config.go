// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	BackendURL     string `env:"MINDWELL_BACKEND_URL" envDefault:"http://localhost:5050"`
	BackendTimeout int    `env:"MINDWELL_BACKEND_TIMEOUT" envDefault:"15"` // seconds
	SessionSecret  string `env:"MINDWELL_SESSION_SECRET,required"`
	SessionDBPath  string `env:"MINDWELL_SESSION_DB_PATH" envDefault:"./data/sessions.db"`
	ServerHost     string `env:"MINDWELL_SERVER_HOST" envDefault:"localhost"`
	ServerPort     int    `env:"MINDWELL_SERVER_PORT" envDefault:"8080"`
	Env            string `env:"MINDWELL_ENV" envDefault:"development"`
	LogLevel       string `env:"MINDWELL_LOG_LEVEL" envDefault:"info"`

	// Cache configuration
	RedisURL     string `env:"MINDWELL_REDIS_URL"`                             // optional, enables distributed caching
	CachePrefix  string `env:"MINDWELL_CACHE_PREFIX" envDefault:"mindwell:"`   // Redis key prefix
	CacheTTL     int    `env:"MINDWELL_CACHE_TTL" envDefault:"300"`            // default TTL in seconds
	CacheMaxSize int    `env:"MINDWELL_CACHE_MAX_SIZE" envDefault:"10000"`     // max memory cache entries
	EventLogSize int    `env:"MINDWELL_EVENT_LOG_SIZE" envDefault:"256"`       // dashboard event ring capacity

	// GeoIP configuration
	GeoIPDBPath string `env:"MINDWELL_GEOIP_DB_PATH"` // path to GeoLite2-Country.mmdb

	// Admin user-list defaults
	UsersPageSize int `env:"MINDWELL_USERS_PAGE_SIZE" envDefault:"10"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if a GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// BackendTimeoutDuration returns the backend request timeout.
func (c Config) BackendTimeoutDuration() time.Duration {
	return time.Duration(c.BackendTimeout) * time.Second
}

// CacheTTLDuration returns the default cache TTL.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("MINDWELL_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("MINDWELL_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("MINDWELL_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if !strings.HasPrefix(cfg.BackendURL, "http://") && !strings.HasPrefix(cfg.BackendURL, "https://") {
		return nil, fmt.Errorf("MINDWELL_BACKEND_URL must be an http(s) URL, got %q", cfg.BackendURL)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
