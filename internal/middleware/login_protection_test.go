// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProtection(maxAttempts int) *LoginProtection {
	cfg := DefaultLoginProtectionConfig()
	cfg.MaxFailedAttempts = maxAttempts
	cfg.IPRateLimit = 1000 // not under test here
	cfg.IPBurst = 1000
	return NewLoginProtection(cfg)
}

func TestAccountLocksAfterMaxFailures(t *testing.T) {
	lp := newTestProtection(3)

	locked, _ := lp.RecordFailedAttempt("sam@example.com")
	assert.False(t, locked)
	locked, _ = lp.RecordFailedAttempt("sam@example.com")
	assert.False(t, locked)
	locked, dur := lp.RecordFailedAttempt("sam@example.com")
	require.True(t, locked)
	assert.Equal(t, 15*time.Minute, dur)

	isLocked, remaining := lp.IsAccountLocked("sam@example.com")
	assert.True(t, isLocked)
	assert.Greater(t, remaining, time.Duration(0))
}

func TestLockoutBacksOffExponentially(t *testing.T) {
	lp := newTestProtection(1)

	_, first := lp.RecordFailedAttempt("sam@example.com")
	assert.Equal(t, 15*time.Minute, first)
	_, second := lp.RecordFailedAttempt("sam@example.com")
	assert.Equal(t, 30*time.Minute, second)
	_, third := lp.RecordFailedAttempt("sam@example.com")
	assert.Equal(t, time.Hour, third)
}

func TestSuccessfulLoginClearsTracking(t *testing.T) {
	lp := newTestProtection(3)

	lp.RecordFailedAttempt("sam@example.com")
	lp.RecordFailedAttempt("sam@example.com")
	assert.Equal(t, 1, lp.GetRemainingAttempts("sam@example.com"))

	lp.RecordSuccessfulLogin("sam@example.com")
	assert.Equal(t, 3, lp.GetRemainingAttempts("sam@example.com"))
}

func TestAccountsAreIndependent(t *testing.T) {
	lp := newTestProtection(2)

	lp.RecordFailedAttempt("a@example.com")
	lp.RecordFailedAttempt("a@example.com")

	locked, _ := lp.IsAccountLocked("a@example.com")
	assert.True(t, locked)
	locked, _ = lp.IsAccountLocked("b@example.com")
	assert.False(t, locked)
}

func TestMiddlewareRateLimitsPostOnly(t *testing.T) {
	cfg := DefaultLoginProtectionConfig()
	cfg.IPRateLimit = 0.001
	cfg.IPBurst = 1
	lp := NewLoginProtection(cfg)

	handler := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	post := func() int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = "203.0.113.1:1000"
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())

	// GETs render the form and are never throttled.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/login", nil)
	req.RemoteAddr = "203.0.113.1:1000"
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCleanupDropsExpiredEntries(t *testing.T) {
	cfg := DefaultLoginProtectionConfig()
	cfg.AttemptWindow = time.Millisecond
	cfg.MaxFailedAttempts = 10
	lp := NewLoginProtection(cfg)

	lp.RecordFailedAttempt("sam@example.com")
	time.Sleep(5 * time.Millisecond)
	lp.Cleanup()

	lp.attemptsMu.RLock()
	defer lp.attemptsMu.RUnlock()
	assert.Empty(t, lp.failedAttempts)
}
