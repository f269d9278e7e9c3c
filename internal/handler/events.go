// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mindwell/mindwell-go/internal/broadcast"
	"github.com/mindwell/mindwell-go/internal/middleware"
	"github.com/mindwell/mindwell-go/internal/session"
)

// keepAliveInterval paces SSE comment lines so intermediaries do not
// drop the idle connection.
const keepAliveInterval = 30 * time.Second

// EventsHandler streams user-changed events to the browser over SSE.
// Each tab holds one subscription scoped to its own user ID; the
// stream carries notifications only, the cookies remain the source of
// truth for what actually changed.
type EventsHandler struct {
	sync *session.Synchronizer
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(sync *session.Synchronizer) *EventsHandler {
	return &EventsHandler{sync: sync}
}

// ssePayload is the event body. SignedOut tells the tab the session
// ended rather than changed.
type ssePayload struct {
	UserID    string `json:"userId"`
	SignedOut bool   `json:"signedOut"`
}

// Stream handles GET /events/user. The response stays open until the
// client disconnects. This route must not sit behind the request
// timeout middleware.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r)
	if !sess.IsAuthenticated() {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	events, cancel := h.sync.SubscribeChan(sess.User.ID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// The session middleware wraps the writer, so flushing goes through
	// the response controller rather than a direct type assertion.
	rc := http.NewResponseController(w)

	// Open the stream immediately so EventSource fires onopen.
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		slog.Error("event stream not flushable", "category", "session", "error", err)
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	slog.Debug("event stream opened", "category", "session", "user_id", sess.User.ID)

	for {
		select {
		case <-r.Context().Done():
			slog.Debug("event stream closed", "category", "session", "user_id", sess.User.ID)
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			if err := rc.Flush(); err != nil {
				return
			}
		case e := <-events:
			if err := writeEvent(w, e); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, e broadcast.Event) error {
	payload, err := json.Marshal(ssePayload{UserID: e.UserID, SignedOut: e.User == nil})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", broadcast.EventUserChanged, payload)
	return err
}
