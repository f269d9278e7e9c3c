// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package gate implements the request-level access-control policy.
// Decide is a pure function from (path, session) to an Allow or
// Redirect decision; the middleware adapter in this package performs
// the navigation side effect so the policy itself stays testable.
package gate

import (
	"strings"

	"github.com/mindwell/mindwell-go/internal/model"
	"github.com/mindwell/mindwell-go/internal/session"
)

// RouteClass classifies a request path.
type RouteClass int

// Route classes, assigned by longest matching prefix. Root only
// matches the exact path "/".
const (
	ClassPublic RouteClass = iota
	ClassRoot
	ClassAdmin
	ClassUser
	ClassProtected
)

// String returns the class name for logging.
func (c RouteClass) String() string {
	switch c {
	case ClassPublic:
		return "public"
	case ClassRoot:
		return "root"
	case ClassAdmin:
		return "admin"
	case ClassUser:
		return "user"
	default:
		return "protected"
	}
}

// Canonical redirect targets.
const (
	RouteLogin          = "/login"
	RouteHome           = "/home"
	RouteAdminDashboard = "/admin/dashboard"
)

// publicPrefixes are the login-style pages reachable without a
// session. reset-password carries a token path segment, hence the
// prefix match.
var publicPrefixes = []string{
	"/login",
	"/register",
	"/request-password-reset",
	"/reset-password",
}

const (
	adminPrefix = "/admin"
	userPrefix  = "/user"
)

// Classify maps a path to exactly one route class. Classification is
// total: any path not matching a known prefix is protected-other.
func Classify(path string) RouteClass {
	if path == "/" {
		return ClassRoot
	}
	// Longest prefix wins; the fixed prefix sets cannot overlap, so a
	// first-match scan over segment-aligned prefixes is sufficient.
	for _, p := range publicPrefixes {
		if hasPathPrefix(path, p) {
			return ClassPublic
		}
	}
	if hasPathPrefix(path, adminPrefix) {
		return ClassAdmin
	}
	if hasPathPrefix(path, userPrefix) {
		return ClassUser
	}
	return ClassProtected
}

// hasPathPrefix matches whole path segments: /admin and /admin/users
// match the /admin prefix, /administrator does not.
func hasPathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

// Decision is the gate's output: allow the request, or redirect.
type Decision struct {
	Target string
}

// Allow is the zero decision: let the request through.
var Allow = Decision{}

// RedirectTo builds a redirect decision.
func RedirectTo(target string) Decision {
	return Decision{Target: target}
}

// IsRedirect reports whether the decision carries a redirect target.
func (d Decision) IsRedirect() bool {
	return d.Target != ""
}

// landing returns the post-login landing page for a role.
func landing(role string) string {
	if role == model.RoleAdmin {
		return RouteAdminDashboard
	}
	return RouteHome
}

// Decide evaluates the access policy for a path and session. It is
// deterministic, has no side effects, and never fails: a session the
// store could not read arrives as anonymous and fails closed toward
// /login.
func Decide(path string, s session.Session) Decision {
	class := Classify(path)

	if !s.IsAuthenticated() {
		if class == ClassPublic || class == ClassRoot {
			return Allow
		}
		return RedirectTo(RouteLogin)
	}

	role := s.Role()
	switch {
	case class == ClassRoot:
		// The bare domain is a dispatcher, never a page, for
		// authenticated visitors.
		return RedirectTo(landing(role))
	case class == ClassAdmin && role != model.RoleAdmin:
		return RedirectTo(RouteHome)
	case class == ClassUser && role != model.RoleUser:
		// Checked before the public rule so an admin on a user-only
		// path lands on the admin dashboard, not /home.
		return RedirectTo(landing(role))
	case class == ClassPublic:
		// Authenticated visitors never see login-style pages.
		return RedirectTo(landing(role))
	default:
		return Allow
	}
}
