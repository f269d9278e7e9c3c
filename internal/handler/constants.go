// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteSuffixDelete is the delete sub-route shared by the entry types.
	RouteSuffixDelete = RouteParamID + "/delete"
	// RouteSuffixEdit is the edit-form sub-route shared by the entry types.
	RouteSuffixEdit = RouteParamID + "/edit"
	// RouteSuffixComplete is the habit completion sub-route.
	RouteSuffixComplete = RouteParamID + "/complete"
	// RouteSuffixToggle is the reminder toggle sub-route.
	RouteSuffixToggle = RouteParamID + "/toggle"

	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteRegister is the register route.
	RouteRegister = "/register"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteRequestReset is the password-reset request route.
	RouteRequestReset = "/request-password-reset"
	// RouteResetPassword is the password-reset route with its token.
	RouteResetPassword = "/reset-password/{token}"

	// RouteHome is the signed-in landing page.
	RouteHome = "/home"
	// RouteJournal is the journal route.
	RouteJournal = "/journal"
	// RouteMood is the mood route.
	RouteMood = "/mood"
	// RouteHabits is the habits route.
	RouteHabits = "/habits"
	// RouteExercises is the exercises route.
	RouteExercises = "/exercises"
	// RouteReminders is the reminders route.
	RouteReminders = "/reminders"
	// RouteCalendar is the calendar route.
	RouteCalendar = "/calendar"
	// RouteSettings is the profile settings route.
	RouteSettings = "/settings"

	// RouteAdminDashboard is the admin dashboard route.
	RouteAdminDashboard = "/admin/dashboard"
	// RouteAdminUsers is the admin user management route.
	RouteAdminUsers = "/admin/users"
	// RouteAdminUsersID is the admin user detail route pattern.
	RouteAdminUsersID = RouteAdminUsers + RouteParamID
	// RouteAdminCacheClear is the admin cache clear route.
	RouteAdminCacheClear = "/admin/cache/clear"

	// RouteEventsUser is the SSE stream for user-changed events.
	RouteEventsUser = "/events/user"
	// RouteHealth is the health check route.
	RouteHealth = "/health"
)

const (
	redirectLogin     = RouteLogin
	redirectHome      = RouteHome
	redirectJournal   = RouteJournal
	redirectMood      = RouteMood
	redirectHabits    = RouteHabits
	redirectExercises = RouteExercises
	redirectReminders = RouteReminders
	redirectSettings  = RouteSettings
	redirectAdmin     = RouteAdminDashboard
	redirectUsers     = RouteAdminUsers
)

// Flash message types rendered by the flash partial.
const (
	flashTypeInfo    = "info"
	flashTypeSuccess = "success"
	flashTypeError   = "error"
)
