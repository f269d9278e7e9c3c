// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell/mindwell-go/internal/middleware"
	"github.com/mindwell/mindwell-go/internal/model"
)

func TestStreamRequiresAuthentication(t *testing.T) {
	app := newTestApp(t, nil)
	h := NewEventsHandler(app.sync)

	rec := app.serve(http.HandlerFunc(h.Stream), httptest.NewRequest(http.MethodGet, RouteEventsUser, nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStreamDeliversUserChangedEvents(t *testing.T) {
	app := newTestApp(t, nil)
	h := NewEventsHandler(app.sync)

	srv := httptest.NewServer(app.sm.LoadAndSave(middleware.LoadIdentity(app.store)(http.HandlerFunc(h.Stream))))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+RouteEventsUser, nil)
	require.NoError(t, err)
	signIn(t, req, testUser(), "tok-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": connected\n", line)

	// The preamble arrives only after the subscription is registered,
	// so this publish cannot race the stream setup.
	updated := testUser()
	updated.FullName = "Sam Renamed"
	app.sync.OnProfileUpdate(httptest.NewRecorder(), updated)

	eventName, data := readSSEEvent(t, reader)
	assert.Equal(t, "user_data_updated", eventName)
	assert.Contains(t, data, `"userId":"u1"`)
	assert.Contains(t, data, `"signedOut":false`)

	app.sync.OnLogout(httptest.NewRecorder(), "u1")

	eventName, data = readSSEEvent(t, reader)
	assert.Equal(t, "user_data_updated", eventName)
	assert.Contains(t, data, `"signedOut":true`)
}

func TestStreamScopedToOwnUser(t *testing.T) {
	app := newTestApp(t, nil)
	h := NewEventsHandler(app.sync)

	srv := httptest.NewServer(app.sm.LoadAndSave(middleware.LoadIdentity(app.store)(http.HandlerFunc(h.Stream))))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+RouteEventsUser, nil)
	require.NoError(t, err)
	signIn(t, req, testUser(), "tok-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": connected\n", line)

	// Another user's update must not reach this stream.
	app.sync.OnProfileUpdate(httptest.NewRecorder(), &model.User{ID: "someone-else", Role: model.RoleUser})
	app.sync.OnProfileUpdate(httptest.NewRecorder(), testUser())

	_, data := readSSEEvent(t, reader)
	assert.Contains(t, data, `"userId":"u1"`)
}

// readSSEEvent reads up to the next complete named event frame.
func readSSEEvent(t *testing.T, reader *bufio.Reader) (name, data string) {
	t.Helper()
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
			return name, data
		}
	}
}
