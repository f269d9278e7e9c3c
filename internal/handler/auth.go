// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mileusna/useragent"

	"github.com/mindwell/mindwell-go/internal/backend"
	"github.com/mindwell/mindwell-go/internal/geoip"
	"github.com/mindwell/mindwell-go/internal/middleware"
	"github.com/mindwell/mindwell-go/internal/render"
	"github.com/mindwell/mindwell-go/internal/session"
	"github.com/mindwell/mindwell-go/internal/util"
)

// AuthHandler handles authentication routes. The backend owns all
// credential checks; this layer translates form posts into backend
// calls and session mutations.
type AuthHandler struct {
	backend         *backend.Client
	renderer        *render.Renderer
	sync            *session.Synchronizer
	loginProtection *middleware.LoginProtection
	geo             *geoip.Lookup
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(bc *backend.Client, renderer *render.Renderer, sync *session.Synchronizer, lp *middleware.LoginProtection, geo *geoip.Lookup) *AuthHandler {
	return &AuthHandler{
		backend:         bc,
		renderer:        renderer,
		sync:            sync,
		loginProtection: lp,
		geo:             geo,
	}
}

// loginFormData re-fills the email field after a failed attempt.
type loginFormData struct {
	Email string
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "auth/login", "Sign in", loginFormData{})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectLogin, "Invalid form data.")
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	if email == "" || password == "" {
		flashError(w, r, h.renderer, redirectLogin, "Email and password are required.")
		return
	}

	clientIP := util.ClientIP(r)

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			slog.Warn("login attempt on locked account",
				"category", "auth", "email", email, "ip", clientIP, "country", h.country(clientIP))
			flashError(w, r, h.renderer, redirectLogin,
				"Too many failed attempts. Try again in "+formatDuration(remaining)+".")
			return
		}
	}

	user, token, err := h.backend.Login(r.Context(), email, password)
	if err != nil {
		h.failedLogin(w, r, email, clientIP, err)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}
	h.sync.OnLogin(w, user, token)

	ua := useragent.Parse(r.UserAgent())
	slog.Info("user signed in",
		"category", "auth",
		"user_id", user.ID,
		"role", user.Role,
		"ip", clientIP,
		"country", h.country(clientIP),
		"browser", ua.Name,
		"os", ua.OS)

	if user.IsAdmin() {
		http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, redirectHome, http.StatusSeeOther)
}

func (h *AuthHandler) failedLogin(w http.ResponseWriter, r *http.Request, email, clientIP string, err error) {
	slog.Warn("login failed",
		"category", "auth", "email", email, "ip", clientIP, "country", h.country(clientIP), "error", err)

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.RecordFailedAttempt(email); locked {
			flashError(w, r, h.renderer, redirectLogin,
				"Too many failed attempts. Account locked for "+formatDuration(remaining)+".")
			return
		}
	}

	h.renderer.SetFlash(r, "Invalid email or password.", flashTypeError)
	w.WriteHeader(http.StatusUnauthorized)
	h.renderPage(w, r, "auth/login", "Sign in", loginFormData{Email: email})
}

// Logout clears the session. POST only; the logout form in the nav
// carries the CSRF protection a GET link would bypass.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if user := middleware.GetUser(r); user != nil {
		userID = user.ID
	}
	h.sync.OnLogout(w, userID)
	flashSuccess(w, r, h.renderer, redirectLogin, "You have been signed out.")
}

// registerFormData re-fills the registration form after a failure.
type registerFormData struct {
	FullName    string
	Username    string
	Email       string
	PhoneNumber string
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "auth/register", "Create account", registerFormData{})
}

// Register handles the registration form submission. The backend does
// not sign the new account in; on success the user lands on the login
// page.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteRegister, "Invalid form data.")
		return
	}

	params := backend.RegisterParams{
		FullName:    r.FormValue("fullName"),
		Username:    r.FormValue("username"),
		Email:       r.FormValue("email"),
		PhoneNumber: r.FormValue("phoneNumber"),
		Password:    r.FormValue("password"),
	}

	if params.FullName == "" || params.Username == "" || params.Email == "" || params.Password == "" {
		h.renderer.SetFlash(r, "All fields except phone number are required.", flashTypeError)
		h.renderPage(w, r, "auth/register", "Create account", registerFormData{
			FullName: params.FullName, Username: params.Username,
			Email: params.Email, PhoneNumber: params.PhoneNumber,
		})
		return
	}

	if err := h.backend.Register(r.Context(), params); err != nil {
		message := "Registration failed. Please try again."
		if be, ok := err.(*backend.Error); ok {
			message = be.Message
		}
		h.renderer.SetFlash(r, message, flashTypeError)
		h.renderPage(w, r, "auth/register", "Create account", registerFormData{
			FullName: params.FullName, Username: params.Username,
			Email: params.Email, PhoneNumber: params.PhoneNumber,
		})
		return
	}

	slog.Info("account registered", "category", "auth", "email", params.Email, "ip", util.ClientIP(r))
	flashSuccess(w, r, h.renderer, redirectLogin, "Account created. You can sign in now.")
}

// RequestResetForm renders the password-reset request page.
func (h *AuthHandler) RequestResetForm(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "auth/request_reset", "Reset password", nil)
}

// RequestReset asks the backend to email a reset link. The response
// is the same whether or not the address exists, so the form cannot
// be used to probe for accounts.
func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteRequestReset, "Invalid form data.")
		return
	}

	email := r.FormValue("email")
	if email == "" {
		flashError(w, r, h.renderer, RouteRequestReset, "Email is required.")
		return
	}

	if err := h.backend.RequestPasswordReset(r.Context(), email); err != nil {
		slog.Warn("password reset request failed", "category", "auth", "error", err)
	}
	flashSuccess(w, r, h.renderer, redirectLogin,
		"If that address has an account, a reset link is on its way.")
}

// resetFormData carries the token from the emailed link into the form
// action.
type resetFormData struct {
	Token string
}

// ResetPasswordForm renders the new-password page for a reset token.
func (h *AuthHandler) ResetPasswordForm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}
	h.renderPage(w, r, "auth/reset_password", "Choose a new password", resetFormData{Token: token})
}

// ResetPassword submits the new password with its reset token.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := r.ParseForm(); err != nil || token == "" {
		flashError(w, r, h.renderer, redirectLogin, "Invalid reset link.")
		return
	}

	password := r.FormValue("password")
	confirm := r.FormValue("confirmPassword")
	target := "/reset-password/" + token

	if password == "" {
		flashError(w, r, h.renderer, target, "Password is required.")
		return
	}
	if password != confirm {
		flashError(w, r, h.renderer, target, "Passwords do not match.")
		return
	}

	if err := h.backend.ResetPassword(r.Context(), token, password); err != nil {
		message := "The reset link is invalid or has expired."
		if be, ok := err.(*backend.Error); ok && be.Message != "" {
			message = be.Message
		}
		flashError(w, r, h.renderer, target, message)
		return
	}

	slog.Info("password reset completed", "category", "auth", "ip", util.ClientIP(r))
	flashSuccess(w, r, h.renderer, redirectLogin, "Password updated. Sign in with your new password.")
}

func (h *AuthHandler) country(ip string) string {
	if h.geo == nil {
		return ""
	}
	return h.geo.LookupCountry(ip)
}

func (h *AuthHandler) renderPage(w http.ResponseWriter, r *http.Request, name, title string, data any) {
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
