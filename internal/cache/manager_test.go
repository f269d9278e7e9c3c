// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell/mindwell-go/internal/broadcast"
	"github.com/mindwell/mindwell-go/internal/model"
)

func newTestManager(t *testing.T, hub *broadcast.Hub) *Manager {
	t.Helper()
	m := NewManager(NewMemory(MemoryOptions{DefaultTTL: time.Minute}), hub, time.Minute, time.Minute)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManagerInvalidatesIdentityOnUserChange(t *testing.T) {
	ctx := context.Background()
	hub := broadcast.NewHub()
	m := newTestManager(t, hub)

	user := &model.User{ID: "u1", FullName: "Sam", Role: model.RoleUser}
	require.NoError(t, m.Identity.Set(ctx, "u1", user))
	require.NoError(t, m.Identity.Set(ctx, "u2", &model.User{ID: "u2"}))

	hub.Publish(broadcast.Event{UserID: "u1", User: user})

	_, ok := m.Identity.Get(ctx, "u1")
	assert.False(t, ok, "changed identity is evicted")
	_, ok = m.Identity.Get(ctx, "u2")
	assert.True(t, ok, "unrelated identity survives")
}

func TestManagerInvalidatesUserListPagesOnAnyChange(t *testing.T) {
	ctx := context.Background()
	hub := broadcast.NewHub()
	m := newTestManager(t, hub)

	page := &UserListPage{Users: []model.User{{ID: "u1"}}, Total: 1, Page: 1, Limit: 10, TotalPages: 1}
	require.NoError(t, m.Users.Set(ctx, "page=1", page))

	hub.Publish(broadcast.Event{UserID: "u9", User: nil})

	_, ok := m.Users.Get(ctx, "page=1")
	assert.False(t, ok, "every cached list page is dropped, whoever changed")
}

func TestManagerCloseDetachesSubscription(t *testing.T) {
	hub := broadcast.NewHub()
	m := NewManager(NewMemory(MemoryOptions{DefaultTTL: time.Minute}), hub, time.Minute, time.Minute)

	require.Equal(t, 1, hub.SubscriberCount())
	require.NoError(t, m.Close())
	assert.Equal(t, 0, hub.SubscriberCount())
}

func TestManagerStats(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil)

	require.NoError(t, m.Identity.Set(ctx, "u1", &model.User{ID: "u1"}))
	_, _ = m.Identity.Get(ctx, "u1")

	stats, ok := m.Stats()
	require.True(t, ok)
	assert.Equal(t, int64(1), stats.Hits)
}
