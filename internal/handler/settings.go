// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mindwell/mindwell-go/internal/backend"
	"github.com/mindwell/mindwell-go/internal/imaging"
	"github.com/mindwell/mindwell-go/internal/middleware"
	"github.com/mindwell/mindwell-go/internal/render"
	"github.com/mindwell/mindwell-go/internal/session"
)

// SettingsHandler serves the profile settings page. A successful save
// replaces the session's user record and broadcasts the change so
// other open tabs refresh their identity.
type SettingsHandler struct {
	backend  *backend.Client
	renderer *render.Renderer
	sync     *session.Synchronizer
	images   *imaging.Processor
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(bc *backend.Client, renderer *render.Renderer, sync *session.Synchronizer, images *imaging.Processor) *SettingsHandler {
	return &SettingsHandler{backend: bc, renderer: renderer, sync: sync, images: images}
}

// settingsData pre-fills the settings form from the current identity.
type settingsData struct {
	FullName    string
	Username    string
	Email       string
	PhoneNumber string
	ImageURL    string
}

// SettingsForm renders the settings page from the session's user
// record; no backend round trip is needed to show it.
func (h *SettingsHandler) SettingsForm(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	err := h.renderer.Render(w, r, "pages/settings", render.TemplateData{
		Title: "Settings",
		User:  user,
		Data: settingsData{
			FullName:    user.FullName,
			Username:    user.Username,
			Email:       user.Email,
			PhoneNumber: user.PhoneNumber,
			ImageURL:    user.ImageURL,
		},
	})
	if err != nil {
		slog.Error("page render failed", "template", "pages/settings", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// SettingsSubmit handles the multipart settings form. The avatar, when
// present, is validated, normalized and re-encoded before the bytes go
// anywhere near the backend.
func (h *SettingsHandler) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r)
	if sess.User == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		flashError(w, r, h.renderer, redirectSettings, "Invalid form data or upload too large.")
		return
	}

	params := backend.UpdateProfileParams{
		FullName:    r.FormValue("fullName"),
		Username:    r.FormValue("username"),
		Email:       r.FormValue("email"),
		PhoneNumber: r.FormValue("phoneNumber"),
		Password:    r.FormValue("password"),
	}
	if params.FullName == "" || params.Username == "" || params.Email == "" {
		flashError(w, r, h.renderer, redirectSettings, "Name, username and email are required.")
		return
	}

	file, header, err := r.FormFile("avatar")
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		avatar, perr := h.images.Process(file, header.Filename)
		if perr != nil {
			if errors.Is(perr, imaging.ErrUnsupportedFormat) {
				flashError(w, r, h.renderer, redirectSettings, "Avatar must be a JPEG, PNG or WebP image.")
				return
			}
			slog.Warn("avatar processing failed", "category", "system", "error", perr)
			flashError(w, r, h.renderer, redirectSettings, "That image could not be processed.")
			return
		}
		params.Image = avatar.Data
		params.ImageName = avatar.Filename
	case errors.Is(err, http.ErrMissingFile):
		// No new avatar; the backend keeps the current one.
	default:
		flashError(w, r, h.renderer, redirectSettings, "Avatar upload failed.")
		return
	}

	user, err := h.backend.UpdateProfile(r.Context(), sess.Token, params)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.sync.Store(), redirectSettings, err)
		return
	}

	h.sync.OnProfileUpdate(w, user)
	flashSuccess(w, r, h.renderer, redirectSettings, "Profile updated.")
}
