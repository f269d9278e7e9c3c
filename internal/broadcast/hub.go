// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package broadcast implements the user-changed notification channel.
// It unifies same-request handler dispatch and cross-tab SSE streaming
// behind one subscribe API, so callers never need to know which
// transport delivers the event.
package broadcast

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mindwell/mindwell-go/internal/model"
)

// EventUserChanged is the wire name of the broadcast event, matching
// the client-side custom event dispatched by the settings form.
const EventUserChanged = "user_data_updated"

// Event carries the updated user record after login, logout or profile
// update. User is nil when the session was cleared (logout) and the
// receiver should treat the identity as signed out.
type Event struct {
	UserID string
	User   *model.User
}

// subscriber is either a synchronous handler or a streaming channel.
type subscriber struct {
	id     string
	userID string
	fn     func(Event)
	ch     chan Event
}

// Hub is a publish/subscribe fan-out for user-changed events.
// Function subscribers are invoked synchronously, in registration
// order, on the publishing goroutine; channel subscribers receive
// best-effort (a full channel drops the event rather than blocking
// the publisher).
type Hub struct {
	mu   sync.Mutex
	subs []*subscriber
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers fn to run for every event matching userID.
// An empty userID matches all events. The returned function removes
// the subscription and must be called on teardown.
func (h *Hub) Subscribe(userID string, fn func(Event)) func() {
	return h.add(&subscriber{userID: userID, fn: fn})
}

// SubscribeChan registers a buffered channel subscription for userID,
// used by the SSE stream handler. Slow consumers lose events instead
// of blocking publishers; the session store remains the source of
// truth for anything missed.
func (h *Hub) SubscribeChan(userID string) (<-chan Event, func()) {
	ch := make(chan Event, 8)
	cancel := h.add(&subscriber{userID: userID, ch: ch})
	return ch, cancel
}

func (h *Hub) add(s *subscriber) func() {
	s.id = uuid.NewString()
	h.mu.Lock()
	h.subs = append(h.subs, s)
	h.mu.Unlock()

	return func() { h.remove(s.id) }
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.subs {
		if s.id == id {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every subscriber registered at the
// time of the call. Subscribers added during dispatch do not observe
// the in-flight event. A panicking handler is logged and skipped; it
// never prevents delivery to the remaining subscribers, and it never
// rolls back the store write that preceded the publish.
func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	matched := make([]*subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		if s.userID == "" || s.userID == e.UserID {
			matched = append(matched, s)
		}
	}
	h.mu.Unlock()

	for _, s := range matched {
		if s.fn != nil {
			h.dispatch(s, e)
			continue
		}
		select {
		case s.ch <- e:
		default:
			slog.Debug("broadcast channel full, event dropped", "user_id", e.UserID)
		}
	}
}

func (h *Hub) dispatch(s *subscriber, e Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("broadcast handler panic", "event", EventUserChanged, "panic", r)
		}
	}()
	s.fn(e)
}

// SubscriberCount returns the number of live subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
