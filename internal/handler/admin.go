// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/mindwell/mindwell-go/internal/broadcast"
	"github.com/mindwell/mindwell-go/internal/cache"
	"github.com/mindwell/mindwell-go/internal/logging"
	"github.com/mindwell/mindwell-go/internal/middleware"
	"github.com/mindwell/mindwell-go/internal/render"
)

// dashboardEventLimit bounds the events table on the dashboard.
const dashboardEventLimit = 50

// AdminHandler serves the admin dashboard and cache controls.
type AdminHandler struct {
	renderer *render.Renderer
	ring     *logging.EventRing
	cache    *cache.Manager
	hub      *broadcast.Hub
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(renderer *render.Renderer, ring *logging.EventRing, cm *cache.Manager, hub *broadcast.Hub) *AdminHandler {
	return &AdminHandler{renderer: renderer, ring: ring, cache: cm, hub: hub}
}

// dashboardData feeds the admin dashboard.
type dashboardData struct {
	Events          []logging.Event
	WarningCount    int
	ErrorCount      int
	HasCacheStats   bool
	CacheStats      cache.Stats
	SubscriberCount int
}

// Dashboard renders operational state: recent warning/error events,
// cache counters and the number of live event subscriptions.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{
		Events: h.ring.Recent(dashboardEventLimit),
	}

	counts := h.ring.CountByLevel()
	data.WarningCount = counts[logging.EventLevelWarning]
	data.ErrorCount = counts[logging.EventLevelError]

	if h.cache != nil {
		data.CacheStats, data.HasCacheStats = h.cache.Stats()
	}
	if h.hub != nil {
		data.SubscriberCount = h.hub.SubscriberCount()
	}

	err := h.renderer.Render(w, r, "admin/dashboard", render.TemplateData{
		Title: "Dashboard",
		User:  middleware.GetUser(r),
		Data:  data,
	})
	if err != nil {
		slog.Error("page render failed", "template", "admin/dashboard", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// CacheClear drops every cached entry. POST only.
func (h *AdminHandler) CacheClear(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		h.cache.ClearAll(r.Context())
		slog.Info("cache cleared by admin", "category", "cache", "admin_id", adminID(r))
	}
	flashSuccess(w, r, h.renderer, redirectAdmin, "Cache cleared.")
}
