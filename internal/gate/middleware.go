// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package gate

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mindwell/mindwell-go/internal/session"
)

// exemptPrefixes bypass the gate: infrastructure endpoints that are
// neither pages nor part of the guarded navigation surface.
var exemptPrefixes = []string{
	"/health",
	"/static",
	"/favicon.ico",
}

// Guard returns middleware that evaluates the access policy on every
// navigation. It reads the session store fresh per request; the
// decision itself is a pure value and the redirect is the only side
// effect performed here.
func Guard(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range exemptPrefixes {
				if strings.HasPrefix(r.URL.Path, p) {
					next.ServeHTTP(w, r)
					return
				}
			}

			decision := Decide(r.URL.Path, store.Get(r))
			if decision.IsRedirect() {
				// Authorization mismatches redirect silently; the
				// redirect itself communicates the boundary.
				slog.Debug("gate redirect",
					"path", r.URL.Path,
					"class", Classify(r.URL.Path).String(),
					"target", decision.Target,
				)
				http.Redirect(w, r, decision.Target, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
