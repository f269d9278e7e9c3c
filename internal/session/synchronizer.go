// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"log/slog"
	"net/http"

	"github.com/mindwell/mindwell-go/internal/broadcast"
	"github.com/mindwell/mindwell-go/internal/model"
)

// Synchronizer applies the three mutating session operations and
// notifies live components. The store write always completes before
// the broadcast is dispatched, so a subscriber reacting to the event
// observes the already-updated store; a failed broadcast is logged
// and never rolls the store back.
type Synchronizer struct {
	store Store
	hub   *broadcast.Hub
}

// NewSynchronizer wires the session store to the broadcast hub.
func NewSynchronizer(store Store, hub *broadcast.Hub) *Synchronizer {
	return &Synchronizer{store: store, hub: hub}
}

// OnLogin persists the credential and user record, then announces the
// new identity.
func (s *Synchronizer) OnLogin(w http.ResponseWriter, user *model.User, token string) {
	s.store.SetToken(w, token)
	s.store.SetUser(w, user)
	s.publish(user.ID, user)
	slog.Info("session established", "user_id", user.ID, "role", user.Role)
}

// OnLogout clears the session and announces the sign-out. The caller
// performs the navigation to /login.
func (s *Synchronizer) OnLogout(w http.ResponseWriter, userID string) {
	s.store.Clear(w)
	s.publish(userID, nil)
	slog.Info("session cleared", "user_id", userID)
}

// OnProfileUpdate replaces the stored user record, leaving the token
// untouched, and announces the change so headers and settings forms
// rendered from earlier state refresh themselves.
func (s *Synchronizer) OnProfileUpdate(w http.ResponseWriter, user *model.User) {
	s.store.SetUser(w, user)
	s.publish(user.ID, user)
	slog.Debug("profile updated in session", "user_id", user.ID)
}

// Subscribe registers a handler for identity changes of userID and
// returns its unsubscribe function. Callers must release it on
// teardown.
func (s *Synchronizer) Subscribe(userID string, fn func(broadcast.Event)) func() {
	return s.hub.Subscribe(userID, fn)
}

// SubscribeChan exposes the streaming subscription used by the SSE
// endpoint.
func (s *Synchronizer) SubscribeChan(userID string) (<-chan broadcast.Event, func()) {
	return s.hub.SubscribeChan(userID)
}

// Store returns the underlying session store.
func (s *Synchronizer) Store() Store {
	return s.store
}

func (s *Synchronizer) publish(userID string, user *model.User) {
	defer func() {
		if r := recover(); r != nil {
			// Best effort only: the store is the durable truth, other
			// components pick the change up on their next read.
			slog.Error("user-changed broadcast failed", "user_id", userID, "panic", r)
		}
	}()
	s.hub.Publish(broadcast.Event{UserID: userID, User: user})
}
