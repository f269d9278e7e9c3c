// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/mindwell/mindwell-go/internal/broadcast"
	"github.com/mindwell/mindwell-go/internal/model"
)

// Key namespaces inside the shared Cacher.
const (
	prefixIdentity = "identity:"
	prefixUsers    = "users:"
)

// Manager groups the typed caches and keeps them coherent with the
// user-changed broadcast channel: any identity change drops the
// affected identity entry and every cached admin user-list page, so
// no page can keep serving a stale role or name.
type Manager struct {
	Identity *Typed[model.User]
	Users    *Typed[UserListPage]

	backend     Cacher
	unsubscribe func()
}

// UserListPage is a cached, fully resolved page of the admin user
// list: the rows to render plus the paging totals they came with.
type UserListPage struct {
	Users      []model.User `json:"users"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int          `json:"totalPages"`
}

// NewManager creates the typed caches over one shared backend and
// subscribes to hub for invalidation. Pass a nil hub to skip the
// subscription (tests that exercise caching alone).
func NewManager(backend Cacher, hub *broadcast.Hub, identityTTL, listTTL time.Duration) *Manager {
	m := &Manager{
		Identity: NewTyped[model.User](backend, prefixIdentity, identityTTL),
		Users:    NewTyped[UserListPage](backend, prefixUsers, listTTL),
		backend:  backend,
	}
	if hub != nil {
		m.unsubscribe = hub.Subscribe("", m.onUserChanged)
	}
	return m
}

func (m *Manager) onUserChanged(e broadcast.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := m.Identity.Delete(ctx, e.UserID); err != nil {
		slog.Warn("identity cache invalidation failed", "user_id", e.UserID, "error", err)
	}
	if err := m.Users.Invalidate(ctx); err != nil {
		slog.Warn("user list cache invalidation failed", "error", err)
	}
}

// ClearAll drops every cached entry and resets counters.
func (m *Manager) ClearAll(ctx context.Context) {
	if err := m.backend.Clear(ctx); err != nil {
		slog.Warn("cache clear failed", "error", err)
		return
	}
	if sp, ok := m.backend.(StatsProvider); ok {
		sp.ResetStats()
	}
	slog.Info("cache cleared")
}

// Stats returns backend counters when the backend tracks them.
func (m *Manager) Stats() (Stats, bool) {
	sp, ok := m.backend.(StatsProvider)
	if !ok {
		return Stats{}, false
	}
	return sp.Stats(), true
}

// Close detaches the hub subscription and closes the backend.
func (m *Manager) Close() error {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	return m.backend.Close()
}
