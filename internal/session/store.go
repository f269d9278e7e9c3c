// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session holds the authenticated identity: a cookie-backed
// session store that is the single source of truth for the current
// user, and a synchronizer that keeps live UI fragments consistent
// after login, logout and profile updates.
package session

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/mindwell/mindwell-go/internal/model"
)

// Cookie names shared with the browser. auth_token carries the bearer
// credential issued by the backend; user_data mirrors the user record
// so pages can render identity without a backend round trip.
const (
	CookieToken = "auth_token"
	CookieUser  = "user_data"
)

// Session is the authenticated identity known to the client.
// User is non-nil only when Token is non-empty.
type Session struct {
	Token string
	User  *model.User
}

// IsAuthenticated returns true when a complete identity is present.
func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// Role returns the session's role, or empty for anonymous sessions.
func (s Session) Role() string {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Store is the injected session-store abstraction. All identity reads
// and writes go through it; no component keeps a private copy beyond
// the duration of a request. Implementations never surface errors:
// unreadable or malformed state degrades to an anonymous session.
type Store interface {
	// Get returns the current session. Never fails; absent or corrupt
	// cookies yield an anonymous session.
	Get(r *http.Request) Session

	// SetToken persists the bearer credential.
	SetToken(w http.ResponseWriter, token string)

	// SetUser persists the user record (full replace, not merge).
	SetUser(w http.ResponseWriter, user *model.User)

	// Clear removes token and user together; a subsequent Get never
	// observes one without the other.
	Clear(w http.ResponseWriter)
}

// CookieStore implements Store over the auth_token and user_data
// cookies, URL-encoded so the user record survives non-ASCII names.
type CookieStore struct {
	// Secure marks cookies HTTPS-only (disabled in development).
	Secure bool
	// DefaultMaxAge bounds cookie lifetime when the bearer token does
	// not carry its own expiry.
	DefaultMaxAge time.Duration
}

// NewCookieStore creates a cookie store with the given lifetime.
func NewCookieStore(secure bool, maxAge time.Duration) *CookieStore {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &CookieStore{Secure: secure, DefaultMaxAge: maxAge}
}

// Get reads the session from request cookies. A user record without a
// token is meaningless and is dropped, so the token/user invariant
// holds even if the cookies were tampered with independently.
func (cs *CookieStore) Get(r *http.Request) Session {
	token := readCookie(r, CookieToken)
	if token == "" {
		return Session{}
	}

	raw := readCookie(r, CookieUser)
	if raw == "" {
		return Session{Token: token}
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		// Corrupt user cookie: keep the token, treat the identity as
		// unknown. The gate fails closed on a missing user.
		return Session{Token: token}
	}
	return Session{Token: token, User: &user}
}

// SetToken persists the bearer credential. The cookie lifetime follows
// the token's own expiry when it is a JWT, so the browser forgets the
// session at the same moment the backend stops accepting it. A token
// that is already dead yields an expired cookie rather than a stored
// credential the backend would only reject.
func (cs *CookieStore) SetToken(w http.ResponseWriter, token string) {
	maxAge := tokenLifetime(token, cs.DefaultMaxAge)
	http.SetCookie(w, cs.cookie(CookieToken, url.QueryEscape(token), maxAge, true))
}

// SetUser persists the user record. The cookie is readable by client
// scripts on purpose: it doubles as the client-side cache that other
// tabs watch for changes.
func (cs *CookieStore) SetUser(w http.ResponseWriter, user *model.User) {
	if user == nil {
		http.SetCookie(w, cs.cookie(CookieUser, "", -1, false))
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		// Marshalling a User cannot realistically fail; degrade to a
		// cleared cache rather than a broken cookie.
		http.SetCookie(w, cs.cookie(CookieUser, "", -1, false))
		return
	}
	http.SetCookie(w, cs.cookie(CookieUser, url.QueryEscape(string(data)), cs.DefaultMaxAge, false))
}

// Clear expires both cookies in the same response.
func (cs *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, cs.cookie(CookieToken, "", -1, true))
	http.SetCookie(w, cs.cookie(CookieUser, "", -1, false))
}

func (cs *CookieStore) cookie(name, value string, maxAge time.Duration, httpOnly bool) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   cs.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < time.Second {
		c.MaxAge = -1
	} else {
		c.MaxAge = int(maxAge / time.Second)
	}
	return c
}

// readCookie returns the URL-decoded cookie value, or empty on any
// failure. Store reads never error; they degrade to "no session".
func readCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	value, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return value
}
