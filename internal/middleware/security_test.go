// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serveWithSecurity(cfg SecurityHeadersConfig, path string) *httptest.ResponseRecorder {
	handler := SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func TestSecurityHeadersProduction(t *testing.T) {
	rec := serveWithSecurity(DefaultSecurityHeadersConfig(false), "/home")

	h := rec.Header()
	assert.Contains(t, h.Get("Content-Security-Policy"), "default-src 'self'")
	assert.Contains(t, h.Get("Strict-Transport-Security"), "max-age=31536000")
	assert.Contains(t, h.Get("Strict-Transport-Security"), "includeSubDomains")
	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
	assert.NotEmpty(t, h.Get("Permissions-Policy"))
}

func TestSecurityHeadersDevelopmentSkipsHSTS(t *testing.T) {
	rec := serveWithSecurity(DefaultSecurityHeadersConfig(true), "/home")

	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "'unsafe-eval'")
}

func TestSecurityHeadersExcludedPrefix(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false)
	cfg.ExcludePrefixes = []string{"/events"}

	rec := serveWithSecurity(cfg, "/events/user")
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestBuildCSPStableOrder(t *testing.T) {
	directives := map[string]string{
		"default-src": "'self'",
		"script-src":  "'self'",
	}
	first := buildCSP(directives)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, buildCSP(directives))
	}
	assert.Equal(t, "default-src 'self'; script-src 'self'", first)
}
