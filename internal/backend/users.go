// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mindwell/mindwell-go/internal/model"
)

const pathAdminUsers = "/api/admin/users"

// ListUsersParams select a page of the admin user list.
type ListUsersParams struct {
	Page   int
	Limit  int
	Search string
}

// UserPage is the raw result of a user-list call. Pagination may be
// nil or incomplete: older backend builds ignore paging parameters
// entirely and return the full collection. The handler layer judges
// whether the payload is trustworthy (see handler.PageProvider).
type UserPage struct {
	Users      []model.User
	Pagination *Pagination
}

// ListUsers fetches a page of users. The user payload historically
// appeared in three shapes (bare array, {users: [...]}, or nested
// under data), so decoding is deliberately tolerant.
func (c *Client) ListUsers(ctx context.Context, token string, params ListUsersParams) (*UserPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("limit", strconv.Itoa(params.Limit))
	if params.Search != "" {
		q.Set("search", params.Search)
	}

	env, err := c.doJSON(ctx, http.MethodGet, pathAdminUsers+"?"+q.Encode(), token, nil)
	if err != nil {
		return nil, err
	}

	page := &UserPage{Pagination: extractPagination(env)}
	page.Users = extractUsers(env.Data)
	return page, nil
}

// extractUsers probes the known payload shapes for the user slice.
func extractUsers(data json.RawMessage) []model.User {
	if len(data) == 0 {
		return nil
	}
	var direct []model.User
	if err := json.Unmarshal(data, &direct); err == nil {
		return direct
	}
	var wrapped struct {
		Users      []model.User `json:"users"`
		Pagination *Pagination  `json:"pagination"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		return wrapped.Users
	}
	return nil
}

// extractPagination looks for the paging payload in its three known
// homes: the envelope, data.pagination, and meta.pagination.
func extractPagination(env *Envelope) *Pagination {
	if env.Pagination != nil {
		return env.Pagination
	}
	if len(env.Data) > 0 {
		var nested struct {
			Pagination *Pagination `json:"pagination"`
		}
		if err := json.Unmarshal(env.Data, &nested); err == nil && nested.Pagination != nil {
			return nested.Pagination
		}
	}
	if env.Meta != nil {
		return env.Meta.Pagination
	}
	return nil
}

// GetUser fetches a single user record.
func (c *Client) GetUser(ctx context.Context, token, id string) (*model.User, error) {
	env, err := c.doJSON(ctx, http.MethodGet, pathAdminUsers+"/"+id, token, nil)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := decodeData(env, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserParams are the admin-editable account fields.
type UpdateUserParams struct {
	FullName    string `json:"fullName"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
}

// UpdateUser replaces an account's editable fields.
func (c *Client) UpdateUser(ctx context.Context, token, id string, params UpdateUserParams) (*model.User, error) {
	env, err := c.doJSON(ctx, http.MethodPut, pathAdminUsers+"/"+id, token, params)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := decodeData(env, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, pathAdminUsers+"/"+id, token, nil)
	return err
}
