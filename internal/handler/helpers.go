// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mindwell/mindwell-go/internal/backend"
	"github.com/mindwell/mindwell-go/internal/middleware"
	"github.com/mindwell/mindwell-go/internal/render"
	"github.com/mindwell/mindwell-go/internal/session"
)

// flashAndRedirect stores a one-shot message and navigates to target.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, target, message, flashType string) {
	renderer.SetFlash(r, message, flashType)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, target, message string) {
	flashAndRedirect(w, r, renderer, target, message, flashTypeError)
}

func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, target, message string) {
	flashAndRedirect(w, r, renderer, target, message, flashTypeSuccess)
}

// errorPageData feeds the shared error template.
type errorPageData struct {
	Heading string
	Message string
}

// renderErrorPage shows the error page with the given status code.
func renderErrorPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, heading, message string) {
	w.WriteHeader(status)
	err := renderer.Render(w, r, "pages/error", render.TemplateData{
		Title: heading,
		User:  middleware.GetUser(r),
		Data:  errorPageData{Heading: heading, Message: message},
	})
	if err != nil {
		slog.Error("error page render failed", "error", err)
		http.Error(w, message, status)
	}
}

// handleBackendError maps a failed backend call to a user-visible
// outcome. An expired or revoked credential clears the session and
// lands on the login page; anything else flashes the backend's message
// on the page the user came from.
func handleBackendError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, store session.Store, target string, err error) {
	var be *backend.Error
	if errors.As(err, &be) {
		switch be.StatusCode {
		case http.StatusUnauthorized:
			store.Clear(w)
			flashError(w, r, renderer, redirectLogin, "Your session has expired. Please sign in again.")
			return
		case http.StatusNotFound:
			flashError(w, r, renderer, target, "That item no longer exists.")
			return
		}
		flashError(w, r, renderer, target, be.Message)
		return
	}

	slog.Error("backend request failed", "category", "backend", "error", err, "path", r.URL.Path)
	flashError(w, r, renderer, target, "The service is temporarily unavailable. Please try again.")
}

// formatDuration renders a lockout duration in whole minutes for
// user-facing messages.
func formatDuration(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
