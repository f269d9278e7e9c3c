package handler

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/require"

	"github.com/mindwell/mindwell-go/internal/backend"
	"github.com/mindwell/mindwell-go/internal/broadcast"
	"github.com/mindwell/mindwell-go/internal/middleware"
	"github.com/mindwell/mindwell-go/internal/model"
	"github.com/mindwell/mindwell-go/internal/render"
	"github.com/mindwell/mindwell-go/internal/session"
	"github.com/mindwell/mindwell-go/web"
)

// testApp wires the handler dependencies against an httptest backend.
type testApp struct {
	backend  *backend.Client
	renderer *render.Renderer
	sm       *scs.SessionManager
	store    *session.CookieStore
	hub      *broadcast.Hub
	sync     *session.Synchronizer
}

// newTestApp builds the shared fixture. backendHandler fakes the
// wellness REST API; pass nil when the test never reaches it.
func newTestApp(t *testing.T, backendHandler http.HandlerFunc) *testApp {
	t.Helper()

	if backendHandler == nil {
		backendHandler = func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected backend call: %s %s", r.Method, r.URL.Path)
		}
	}
	srv := httptest.NewServer(backendHandler)
	t.Cleanup(srv.Close)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)

	sm := scs.New()
	renderer, err := render.New(render.Config{TemplatesFS: templatesFS, SessionManager: sm, IsDev: true})
	require.NoError(t, err)

	store := session.NewCookieStore(false, time.Hour)
	hub := broadcast.NewHub()

	return &testApp{
		backend:  backend.New(srv.URL, 5*time.Second),
		renderer: renderer,
		sm:       sm,
		store:    store,
		hub:      hub,
		sync:     session.NewSynchronizer(store, hub),
	}
}

// serve runs a handler through the session and identity middleware the
// router applies in production.
func (a *testApp) serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	chain := a.sm.LoadAndSave(middleware.LoadIdentity(a.store)(h))
	chain.ServeHTTP(rec, r)
	return rec
}

// signIn attaches identity cookies for user to the request.
func signIn(t *testing.T, r *http.Request, user *model.User, token string) {
	t.Helper()
	r.AddCookie(&http.Cookie{Name: session.CookieToken, Value: url.QueryEscape(token)})
	data, err := json.Marshal(user)
	require.NoError(t, err)
	r.AddCookie(&http.Cookie{Name: session.CookieUser, Value: url.QueryEscape(string(data))})
}

// testUser returns a regular account for request fixtures.
func testUser() *model.User {
	return &model.User{ID: "u1", Email: "sam@example.com", FullName: "Sam Doe", Username: "sam", Role: model.RoleUser}
}

// testAdmin returns an admin account for request fixtures.
func testAdmin() *model.User {
	return &model.User{ID: "a1", Email: "admin@example.com", FullName: "Ada Admin", Username: "ada", Role: model.RoleAdmin}
}

// envelope writes a backend success envelope around data.
func envelope(w http.ResponseWriter, data any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

// envelopeError writes a backend rejection.
func envelopeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}
