// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenLifetime inspects the bearer token without verifying it and
// returns how long the cookie holding it should live. Verification is
// the backend's job; the front end only wants the expiry so the cookie
// and the credential age out together. Opaque (non-JWT) tokens and
// tokens without an exp claim use the fallback; a token that already
// expired returns zero, so the cookie is never kept past the
// credential it carries.
func tokenLifetime(token string, fallback time.Duration) time.Duration {
	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return fallback
	}
	if claims.ExpiresAt == nil {
		return fallback
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return 0
	}
	return remaining
}
