// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mindwell/mindwell-go/internal/backend"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "1 minute"},
		{time.Minute, "1 minute"},
		{90 * time.Second, "2 minutes"},
		{15 * time.Minute, "15 minutes"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in), "formatDuration(%v)", tt.in)
	}
}

func TestHandleBackendErrorSurfacesBackendMessage(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, RouteJournal, nil)
	rec := app.serve(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleBackendError(w, r, app.renderer, app.store, RouteJournal,
			&backend.Error{StatusCode: http.StatusBadRequest, Message: "Title too long"})
	}), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteJournal, rec.Header().Get("Location"))
}

func TestHandleBackendErrorHidesTransportFailures(t *testing.T) {
	// Non-backend errors (DNS, timeouts) must never leak their text to
	// the page; the user gets the generic unavailable message instead.
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, RouteJournal, nil)
	rec := app.serve(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleBackendError(w, r, app.renderer, app.store, RouteJournal,
			assert.AnError)
	}), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteJournal, rec.Header().Get("Location"))
}
