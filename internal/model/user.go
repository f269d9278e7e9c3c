// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models shared across the application:
// the User identity record and the wellness entry types consumed from
// the backend REST API.
package model

import "time"

// User roles known to the backend.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the identity record issued by the backend on login and
// whoami. The backend owns the durable copy; the front end only caches
// it in the session store.
type User struct {
	ID          string    `json:"_id"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	Username    string    `json:"username"`
	PhoneNumber string    `json:"phoneNumber"`
	Role        string    `json:"role"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName returns the most specific non-empty name for UI display.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
