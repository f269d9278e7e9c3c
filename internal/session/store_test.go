// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell/mindwell-go/internal/model"
)

// requestWithCookies replays the cookies a recorder set onto a fresh
// request, simulating the browser's next navigation.
func requestWithCookies(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}

func testUser() *model.User {
	return &model.User{
		ID:       "u1",
		Email:    "sam@example.com",
		FullName: "Sam Example",
		Username: "sam",
		Role:     model.RoleUser,
	}
}

func TestRoundTrip(t *testing.T) {
	store := NewCookieStore(false, time.Hour)
	rec := httptest.NewRecorder()

	store.SetToken(rec, "tok123")
	store.SetUser(rec, testUser())

	got := store.Get(requestWithCookies(t, rec))
	require.True(t, got.IsAuthenticated())
	assert.Equal(t, "tok123", got.Token)
	assert.Equal(t, "sam@example.com", got.User.Email)
	assert.Equal(t, model.RoleUser, got.Role())
}

func TestRoundTripNonASCIIName(t *testing.T) {
	store := NewCookieStore(false, time.Hour)
	rec := httptest.NewRecorder()

	user := testUser()
	user.FullName = "Séamus Ó Beolláin"
	store.SetToken(rec, "tok123")
	store.SetUser(rec, user)

	got := store.Get(requestWithCookies(t, rec))
	require.NotNil(t, got.User)
	assert.Equal(t, "Séamus Ó Beolláin", got.User.FullName)
}

func TestGetWithoutCookiesIsAnonymous(t *testing.T) {
	store := NewCookieStore(false, time.Hour)
	got := store.Get(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, got.IsAuthenticated())
	assert.Empty(t, got.Token)
	assert.Nil(t, got.User)
}

func TestUserWithoutTokenIsDropped(t *testing.T) {
	store := NewCookieStore(false, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  CookieUser,
		Value: url.QueryEscape(`{"_id":"u1","role":"admin"}`),
	})

	got := store.Get(req)
	assert.Nil(t, got.User, "user record without a token is meaningless")
	assert.False(t, got.IsAuthenticated())
}

func TestCorruptUserCookieDegradesToAnonymousIdentity(t *testing.T) {
	store := NewCookieStore(false, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieToken, Value: "tok123"})
	req.AddCookie(&http.Cookie{Name: CookieUser, Value: url.QueryEscape("{not json")})

	got := store.Get(req)
	assert.Equal(t, "tok123", got.Token)
	assert.Nil(t, got.User)
	assert.False(t, got.IsAuthenticated())
}

func TestClearRemovesBothAtomically(t *testing.T) {
	store := NewCookieStore(false, time.Hour)
	rec := httptest.NewRecorder()
	store.SetToken(rec, "tok123")
	store.SetUser(rec, testUser())

	cleared := httptest.NewRecorder()
	store.Clear(cleared)

	expired := 0
	for _, c := range cleared.Result().Cookies() {
		if c.Name == CookieToken || c.Name == CookieUser {
			assert.Equal(t, -1, c.MaxAge)
			expired++
		}
	}
	assert.Equal(t, 2, expired)

	got := store.Get(requestWithCookies(t, cleared))
	assert.Empty(t, got.Token)
	assert.Nil(t, got.User)
}

func TestTokenCookieIsHTTPOnlyUserCookieIsNot(t *testing.T) {
	store := NewCookieStore(true, time.Hour)
	rec := httptest.NewRecorder()
	store.SetToken(rec, "tok123")
	store.SetUser(rec, testUser())

	for _, c := range rec.Result().Cookies() {
		switch c.Name {
		case CookieToken:
			assert.True(t, c.HttpOnly)
			assert.True(t, c.Secure)
		case CookieUser:
			// Client scripts read this cookie to render identity and
			// watch for cross-tab changes.
			assert.False(t, c.HttpOnly)
			assert.True(t, c.Secure)
		}
	}
}

func TestJWTExpiryBoundsTokenCookie(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(10 * time.Minute)),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	store := NewCookieStore(false, 24*time.Hour)
	rec := httptest.NewRecorder()
	store.SetToken(rec, signed)

	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieToken {
			assert.LessOrEqual(t, c.MaxAge, 600)
			assert.Greater(t, c.MaxAge, 540)
		}
	}
}

func TestOpaqueTokenUsesDefaultLifetime(t *testing.T) {
	assert.Equal(t, time.Hour, tokenLifetime("opaque-token", time.Hour))
}

func TestExpiredJWTIsNotPersisted(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), tokenLifetime(signed, time.Hour))

	store := NewCookieStore(false, 24*time.Hour)
	rec := httptest.NewRecorder()
	store.SetToken(rec, signed)

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieToken {
			found = true
			assert.Equal(t, -1, c.MaxAge, "a dead credential must expire with the response that set it")
		}
	}
	assert.True(t, found)
}
