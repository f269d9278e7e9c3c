// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that keeps recent WARN and
// ERROR records in a bounded in-memory ring for the admin dashboard.
// The front end holds no durable storage, so the ring is the whole
// event log: it survives exactly as long as the process.
package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Event levels shown on the dashboard.
const (
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories, inferred from record attributes or message text.
const (
	EventCategoryAuth    = "auth"
	EventCategorySession = "session"
	EventCategoryBackend = "backend"
	EventCategoryCache   = "cache"
	EventCategorySystem  = "system"
)

// Event is one captured log record.
type Event struct {
	Time     time.Time
	Level    string
	Category string
	Message  string
	Attrs    map[string]string
}

// EventRingHandler is a slog.Handler that forwards every record to the
// wrapped handler and additionally captures records at or above level
// into a fixed-size ring.
type EventRingHandler struct {
	inner slog.Handler
	ring  *EventRing
	level slog.Level
	attrs []slog.Attr
}

// NewEventRingHandler wraps inner, capturing WARN and above into ring.
func NewEventRingHandler(inner slog.Handler, ring *EventRing) *EventRingHandler {
	return NewEventRingHandlerWithLevel(inner, ring, slog.LevelWarn)
}

// NewEventRingHandlerWithLevel wraps inner with a custom capture level.
func NewEventRingHandlerWithLevel(inner slog.Handler, ring *EventRing, level slog.Level) *EventRingHandler {
	return &EventRingHandler{inner: inner, ring: ring, level: level}
}

// Enabled implements slog.Handler.
func (h *EventRingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventRingHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.ring.Add(h.toEvent(r))
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventRingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &EventRingHandler{
		inner: h.inner.WithAttrs(attrs),
		ring:  h.ring,
		level: h.level,
		attrs: merged,
	}
}

// WithGroup implements slog.Handler.
func (h *EventRingHandler) WithGroup(name string) slog.Handler {
	return &EventRingHandler{
		inner: h.inner.WithGroup(name),
		ring:  h.ring,
		level: h.level,
		attrs: h.attrs,
	}
}

func (h *EventRingHandler) toEvent(r slog.Record) Event {
	attrs := make(map[string]string, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})

	category := attrs["category"]
	delete(attrs, "category")
	if category == "" {
		category = inferCategory(r.Message)
	}

	return Event{
		Time:     r.Time,
		Level:    levelName(r.Level),
		Category: category,
		Message:  r.Message,
		Attrs:    attrs,
	}
}

func levelName(level slog.Level) string {
	if level >= slog.LevelError {
		return EventLevelError
	}
	return EventLevelWarning
}

// inferCategory guesses a category from the message text when the
// record carries no explicit "category" attribute.
func inferCategory(msg string) string {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "login") || strings.Contains(m, "logout") || strings.Contains(m, "auth"):
		return EventCategoryAuth
	case strings.Contains(m, "session") || strings.Contains(m, "cookie"):
		return EventCategorySession
	case strings.Contains(m, "backend"):
		return EventCategoryBackend
	case strings.Contains(m, "cache"):
		return EventCategoryCache
	default:
		return EventCategorySystem
	}
}

// EventRing is a fixed-capacity buffer of the most recent events,
// newest first on read. Safe for concurrent use.
type EventRing struct {
	mu    sync.RWMutex
	buf   []Event
	next  int
	count int
}

// NewEventRing creates a ring holding at most capacity events.
func NewEventRing(capacity int) *EventRing {
	if capacity <= 0 {
		capacity = 256
	}
	return &EventRing{buf: make([]Event, capacity)}
}

// Add appends an event, evicting the oldest when full.
func (r *EventRing) Add(e Event) {
	r.mu.Lock()
	r.buf[r.next] = e
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
	r.mu.Unlock()
}

// Recent returns up to limit events, newest first. A non-positive
// limit returns everything held.
func (r *EventRing) Recent(limit int) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > r.count {
		limit = r.count
	}
	out := make([]Event, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out
}

// CountByLevel tallies held events per level.
func (r *EventRing) CountByLevel() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for i := 1; i <= r.count; i++ {
		idx := (r.next - i + len(r.buf)) % len(r.buf)
		counts[r.buf[idx].Level]++
	}
	return counts
}

// Len returns the number of held events.
func (r *EventRing) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Clear drops all held events.
func (r *EventRing) Clear() {
	r.mu.Lock()
	r.next = 0
	r.count = 0
	r.mu.Unlock()
}
