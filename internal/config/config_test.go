// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongSecret = "Str0ng!Secret#With-Enough_Length42"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MINDWELL_SESSION_SECRET", strongSecret)
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5050", cfg.BackendURL)
	assert.Equal(t, "localhost:8080", cfg.ServerAddr())
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.UseRedisCache())
	assert.False(t, cfg.GeoIPEnabled())
	assert.Equal(t, 10, cfg.UsersPageSize)
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	t.Setenv("MINDWELL_SESSION_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("MINDWELL_SESSION_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 bytes")
}

func TestLoadRejectsKnownWeakSecret(t *testing.T) {
	t.Setenv("MINDWELL_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "known default value")
}

func TestLoadRejectsNonHTTPBackendURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MINDWELL_BACKEND_URL", "localhost:5050")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MINDWELL_BACKEND_URL")
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MINDWELL_ENV", "production")
	t.Setenv("MINDWELL_SERVER_PORT", "9000")
	t.Setenv("MINDWELL_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("MINDWELL_BACKEND_TIMEOUT", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "localhost:9000", cfg.ServerAddr())
	assert.True(t, cfg.UseRedisCache())
	assert.Equal(t, 30, cfg.BackendTimeout)
	assert.Equal(t, float64(30), cfg.BackendTimeoutDuration().Seconds())
}

func TestHasMinimumEntropy(t *testing.T) {
	assert.True(t, hasMinimumEntropy("Abc123!xyz"))
	assert.False(t, hasMinimumEntropy("alllowercaseletters"))
	assert.False(t, hasMinimumEntropy("lower123"))
}
