// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mindwell/mindwell-go/internal/backend"
	"github.com/mindwell/mindwell-go/internal/cache"
	"github.com/mindwell/mindwell-go/internal/middleware"
	"github.com/mindwell/mindwell-go/internal/model"
	"github.com/mindwell/mindwell-go/internal/session"
)

// IdentityRefresher keeps the cookie identity aligned with the backend
// record. The user_data cookie renders pages without a round trip, but
// an admin can edit the account behind the user's back; the refresher
// re-reads the record through the identity cache, so a stale cookie is
// corrected within one cache TTL instead of waiting for a re-login.
type IdentityRefresher struct {
	backend *backend.Client
	cache   *cache.Manager
	sync    *session.Synchronizer
}

// NewIdentityRefresher creates a new IdentityRefresher.
func NewIdentityRefresher(bc *backend.Client, cm *cache.Manager, sync *session.Synchronizer) *IdentityRefresher {
	return &IdentityRefresher{backend: bc, cache: cm, sync: sync}
}

// Middleware refreshes the signed-in identity on each request. A cache
// hit costs nothing; a miss is one whoami call. When the backend copy
// differs from the cookie copy, the cookie is rewritten and the change
// broadcast so open tabs follow. Refresh failures are not fatal: the
// cookie identity keeps serving and the page's own backend calls
// surface any real authorization problem.
func (ir *IdentityRefresher) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := middleware.GetSession(r)
			if !sess.IsAuthenticated() {
				next.ServeHTTP(w, r)
				return
			}

			fresh, err := ir.cache.Identity.GetOrSet(r.Context(), sess.User.ID, func() (*model.User, error) {
				return ir.backend.WhoAmI(r.Context(), sess.Token)
			})
			if err != nil {
				slog.Debug("identity refresh skipped", "category", "auth", "user_id", sess.User.ID, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if identityChanged(sess.User, fresh) {
				ir.sync.OnProfileUpdate(w, fresh)
				sess.User = fresh
				r = r.WithContext(context.WithValue(r.Context(), middleware.ContextKeySession, sess))
				slog.Info("identity refreshed from backend", "category", "auth", "user_id", fresh.ID)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// identityChanged reports whether the rendered identity fields differ.
func identityChanged(a, b *model.User) bool {
	return a.FullName != b.FullName ||
		a.Username != b.Username ||
		a.Email != b.Email ||
		a.PhoneNumber != b.PhoneNumber ||
		a.Role != b.Role ||
		a.ImageURL != b.ImageURL
}
