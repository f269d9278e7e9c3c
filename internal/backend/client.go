// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package backend is the client for the external wellness REST API.
// Every endpoint answers with the same envelope; this package decodes
// it, maps failures to typed errors carrying the backend's message,
// and never leaks transport details to callers.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Envelope is the response contract shared by all backend endpoints.
type Envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Token      string          `json:"token,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
	Meta       *Meta           `json:"meta,omitempty"`
}

// Meta is an alternative location some backend builds use for the
// pagination payload.
type Meta struct {
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination is the backend's paging payload. Fields are pointers so
// callers can distinguish "absent" from zero when judging whether the
// backend paginated at all.
type Pagination struct {
	Total      *int `json:"total,omitempty"`
	Page       *int `json:"page,omitempty"`
	Limit      *int `json:"limit,omitempty"`
	TotalPages *int `json:"totalPages,omitempty"`
}

// Complete reports whether all four paging fields are present.
func (p *Pagination) Complete() bool {
	return p != nil && p.Total != nil && p.Page != nil && p.Limit != nil && p.TotalPages != nil
}

// Error is a backend rejection: the envelope said success=false, or
// the transport answered with a non-success status.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend request failed with status %d", e.StatusCode)
}

// Client talks to the backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a backend client. baseURL is the API origin without a
// trailing slash, e.g. http://localhost:5050.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// doJSON sends a JSON request and decodes the envelope.
func (c *Client) doJSON(ctx context.Context, method, path, token string, body any) (*Envelope, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, token, reader, "application/json")
}

// do sends a request with an optional bearer token and decodes the
// envelope. An unsuccessful envelope becomes an *Error so callers can
// surface the backend's message verbatim.
func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string) (*Envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling backend: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("reading backend response: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &Error{StatusCode: resp.StatusCode}
	}
	if !env.Success {
		return nil, &Error{StatusCode: resp.StatusCode, Message: env.Message}
	}
	return &env, nil
}

// decodeData unmarshals the envelope's data field into out.
func decodeData(env *Envelope, out any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("backend response has no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding backend data: %w", err)
	}
	return nil
}
