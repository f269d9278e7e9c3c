// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mindwell/mindwell-go/internal/backend"
	"github.com/mindwell/mindwell-go/internal/cache"
	"github.com/mindwell/mindwell-go/internal/model"
)

// PageProvider resolves one page of the admin user list. Backend
// builds disagree on paging: newer ones honor page/limit/search and
// return complete pagination metadata, older ones ignore all three and
// return the whole collection. The provider inspects each response and
// falls back to client-side filtering and slicing whenever the
// server's paging cannot be trusted, so the admin page renders the
// same either way.
type PageProvider struct {
	backend  *backend.Client
	cache    *cache.Manager
	pageSize int
}

// NewPageProvider creates a PageProvider. The cache manager may be nil
// to bypass caching entirely.
func NewPageProvider(bc *backend.Client, cm *cache.Manager, pageSize int) *PageProvider {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &PageProvider{backend: bc, cache: cm, pageSize: pageSize}
}

// PageSize returns the configured rows per page.
func (p *PageProvider) PageSize() int {
	return p.pageSize
}

// Page returns the resolved page for a page number and search query.
// Page numbers clamp into the valid range instead of erroring.
func (p *PageProvider) Page(ctx context.Context, token string, page int, query string) (*cache.UserListPage, error) {
	if page < 1 {
		page = 1
	}
	query = strings.TrimSpace(query)

	key := fmt.Sprintf("p%d:q:%s", page, strings.ToLower(query))
	if p.cache != nil {
		if cached, ok := p.cache.Users.Get(ctx, key); ok {
			return cached, nil
		}
	}

	resolved, err := p.fetch(ctx, token, page, query)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Users.Set(ctx, key, resolved); err != nil {
			slog.Warn("user list cache write failed", "category", "cache", "error", err)
		}
	}
	return resolved, nil
}

func (p *PageProvider) fetch(ctx context.Context, token string, page int, query string) (*cache.UserListPage, error) {
	raw, err := p.backend.ListUsers(ctx, token, backend.ListUsersParams{
		Page:   page,
		Limit:  p.pageSize,
		Search: query,
	})
	if err != nil {
		return nil, err
	}

	if trustable(raw, page, p.pageSize) {
		pg := raw.Pagination
		return &cache.UserListPage{
			Users:      raw.Users,
			Total:      *pg.Total,
			Page:       *pg.Page,
			Limit:      p.pageSize,
			TotalPages: *pg.TotalPages,
		}, nil
	}

	slog.Debug("backend paging not trusted, paginating client-side",
		"category", "backend", "returned", len(raw.Users), "requested_page", page)
	return p.paginate(raw.Users, page, query), nil
}

// trustable reports whether the backend response honored the paging
// request: complete metadata, the requested page, and no more rows
// than the limit allows.
func trustable(raw *backend.UserPage, page, limit int) bool {
	pg := raw.Pagination
	if pg == nil || !pg.Complete() {
		return false
	}
	if *pg.Page != page {
		return false
	}
	return len(raw.Users) <= limit
}

// paginate filters and slices the full collection locally.
func (p *PageProvider) paginate(users []model.User, page int, query string) *cache.UserListPage {
	if query != "" {
		q := strings.ToLower(query)
		filtered := make([]model.User, 0, len(users))
		for _, u := range users {
			if matchesQuery(u, q) {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}

	total := len(users)
	totalPages := (total + p.pageSize - 1) / p.pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * p.pageSize
	end := start + p.pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &cache.UserListPage{
		Users:      users[start:end],
		Total:      total,
		Page:       page,
		Limit:      p.pageSize,
		TotalPages: totalPages,
	}
}

// matchesQuery checks the lowercase query against the searchable
// account fields.
func matchesQuery(u model.User, q string) bool {
	return strings.Contains(strings.ToLower(u.FullName), q) ||
		strings.Contains(strings.ToLower(u.Email), q) ||
		strings.Contains(strings.ToLower(u.Username), q) ||
		strings.Contains(strings.ToLower(u.PhoneNumber), q)
}
