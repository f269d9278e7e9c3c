// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for identity loading,
// security headers, CSRF, timeouts and login protection.
package middleware

import (
	"context"
	"net/http"

	"github.com/mindwell/mindwell-go/internal/model"
	"github.com/mindwell/mindwell-go/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request-scoped data.
const (
	ContextKeySession     ContextKey = "session"
	ContextKeyRequestPath ContextKey = "request_path"
)

// LoadIdentity creates middleware that decodes the identity cookies
// once per request and stores the result in the request context, so
// handlers never re-read cookies themselves.
func LoadIdentity(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := store.Get(r)
			ctx := context.WithValue(r.Context(), ContextKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession returns the identity loaded by LoadIdentity. Without the
// middleware it returns an anonymous session.
func GetSession(r *http.Request) session.Session {
	sess, ok := r.Context().Value(ContextKeySession).(session.Session)
	if !ok {
		return session.Session{}
	}
	return sess
}

// GetUser returns the authenticated user from the request context, or
// nil for anonymous requests.
func GetUser(r *http.Request) *model.User {
	return GetSession(r).User
}

// RequestPath creates middleware that records the original request
// path before any router rewriting, for templates and logging.
func RequestPath() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestPath returns the path recorded by RequestPath, falling
// back to the current URL path.
func GetRequestPath(r *http.Request) string {
	if path, ok := r.Context().Value(ContextKeyRequestPath).(string); ok {
		return path
	}
	return r.URL.Path
}
