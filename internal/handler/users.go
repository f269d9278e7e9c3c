// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mindwell/mindwell-go/internal/backend"
	"github.com/mindwell/mindwell-go/internal/cache"
	"github.com/mindwell/mindwell-go/internal/middleware"
	"github.com/mindwell/mindwell-go/internal/model"
	"github.com/mindwell/mindwell-go/internal/render"
	"github.com/mindwell/mindwell-go/internal/session"
)

// UsersHandler serves the admin user management pages.
type UsersHandler struct {
	backend  *backend.Client
	renderer *render.Renderer
	store    session.Store
	cache    *cache.Manager
	pages    *PageProvider
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(bc *backend.Client, renderer *render.Renderer, store session.Store, cm *cache.Manager, pages *PageProvider) *UsersHandler {
	return &UsersHandler{backend: bc, renderer: renderer, store: store, cache: cm, pages: pages}
}

// usersListData feeds the admin user list page.
type usersListData struct {
	Users      []model.User
	Query      string
	Page       int
	TotalPages int
	Total      int
}

// List renders a page of accounts, optionally filtered by ?q=.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	query := r.URL.Query().Get("q")

	resolved, err := h.pages.Page(r.Context(), middleware.GetSession(r).Token, page, query)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectAdmin, err)
		return
	}

	h.renderPage(w, r, "admin/users", "Users", usersListData{
		Users:      resolved.Users,
		Query:      query,
		Page:       resolved.Page,
		TotalPages: resolved.TotalPages,
		Total:      resolved.Total,
	})
}

// userEditData feeds the account edit form.
type userEditData struct {
	User *model.User
}

// EditForm renders the account edit page.
func (h *UsersHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.backend.GetUser(r.Context(), middleware.GetSession(r).Token, id)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectUsers, err)
		return
	}

	h.renderPage(w, r, "admin/user_edit", "Edit user", userEditData{User: user})
}

// Update applies the edit form to an account. Changing another user's
// record invalidates their cached identity and every cached list page;
// their own open sessions pick the change up on the next whoami.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectUsers, "Invalid form data.")
		return
	}

	role := r.FormValue("role")
	if role != model.RoleAdmin && role != model.RoleUser {
		flashError(w, r, h.renderer, redirectUsers+"/"+id, "Unknown role.")
		return
	}

	params := backend.UpdateUserParams{
		FullName:    r.FormValue("fullName"),
		Username:    r.FormValue("username"),
		Email:       r.FormValue("email"),
		PhoneNumber: r.FormValue("phoneNumber"),
		Role:        role,
	}
	if params.FullName == "" || params.Username == "" || params.Email == "" {
		flashError(w, r, h.renderer, redirectUsers+"/"+id, "Name, username and email are required.")
		return
	}

	updated, err := h.backend.UpdateUser(r.Context(), middleware.GetSession(r).Token, id, params)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectUsers, err)
		return
	}

	h.invalidate(r, id)
	slog.Info("user updated by admin", "category", "auth", "user_id", updated.ID, "role", updated.Role,
		"admin_id", adminID(r))
	flashSuccess(w, r, h.renderer, redirectUsers, "User updated.")
}

// Delete removes an account. Self-deletion is refused so an admin
// cannot lock the instance out from under themselves.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if admin := middleware.GetUser(r); admin != nil && admin.ID == id {
		flashError(w, r, h.renderer, redirectUsers, "You cannot delete your own account.")
		return
	}

	if err := h.backend.DeleteUser(r.Context(), middleware.GetSession(r).Token, id); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectUsers, err)
		return
	}

	h.invalidate(r, id)
	slog.Warn("user deleted by admin", "category", "auth", "user_id", id, "admin_id", adminID(r))
	flashSuccess(w, r, h.renderer, redirectUsers, "User deleted.")
}

// invalidate drops the edited account's cached identity and all
// cached list pages. Admin edits bypass the broadcast hub (the edited
// user has no session on this node to announce), so the cache is
// cleared directly.
func (h *UsersHandler) invalidate(r *http.Request, userID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Identity.Delete(r.Context(), userID); err != nil {
		slog.Warn("identity cache invalidation failed", "category", "cache", "error", err)
	}
	if err := h.cache.Users.Invalidate(r.Context()); err != nil {
		slog.Warn("user list cache invalidation failed", "category", "cache", "error", err)
	}
}

func adminID(r *http.Request) string {
	if u := middleware.GetUser(r); u != nil {
		return u.ID
	}
	return ""
}

func (h *UsersHandler) renderPage(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	err := h.renderer.Render(w, r, name, render.TemplateData{
		Title: title,
		User:  middleware.GetUser(r),
		Data:  data,
	})
	if err != nil {
		slog.Error("page render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
