// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"time"
)

// Config selects and tunes a cache backend.
type Config struct {
	// Type is "memory" or "redis".
	Type string

	// RedisURL is required when Type is "redis".
	RedisURL string

	// Prefix namespaces keys on shared Redis instances.
	Prefix string

	DefaultTTL      time.Duration
	MaxEntries      int // memory backend only, 0 = unlimited
	CleanupInterval time.Duration
}

// DefaultConfig returns the memory backend defaults.
func DefaultConfig() Config {
	return Config{
		Type:            "memory",
		DefaultTTL:      5 * time.Minute,
		MaxEntries:      10000,
		CleanupInterval: time.Minute,
	}
}

// New creates a Cacher from cfg.
func New(cfg Config) (Cacher, error) {
	switch cfg.Type {
	case "redis":
		opts := DefaultRedisOptions()
		opts.URL = cfg.RedisURL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}
		if cfg.DefaultTTL > 0 {
			opts.DefaultTTL = cfg.DefaultTTL
		}
		return NewRedis(opts)
	case "", "memory":
		return NewMemory(MemoryOptions{
			DefaultTTL:      cfg.DefaultTTL,
			MaxEntries:      cfg.MaxEntries,
			CleanupInterval: cfg.CleanupInterval,
		}), nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}
