// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/mindwell/mindwell-go/internal/model"
)

// Auth endpoint paths, matching the backend's route table.
const (
	pathLogin                = "/api/auth/login"
	pathRegister             = "/api/auth/register"
	pathWhoAmI               = "/api/auth/whoami"
	pathUpdateProfile        = "/api/auth/update-profile"
	pathRequestPasswordReset = "/api/auth/request-password-reset"
	pathResetPassword        = "/api/auth/reset-password/"
)

// Login exchanges credentials for a user record and a bearer token.
// A rejection leaves no trace in any session state; the caller decides
// what to persist.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	env, err := c.doJSON(ctx, http.MethodPost, pathLogin, "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, "", err
	}
	var user model.User
	if err := decodeData(env, &user); err != nil {
		return nil, "", err
	}
	if env.Token == "" {
		return nil, "", fmt.Errorf("login response missing token")
	}
	return &user, env.Token, nil
}

// RegisterParams are the fields the registration form collects.
type RegisterParams struct {
	FullName    string `json:"fullName"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// Register creates a new account. The backend does not log the new
// user in; the caller sends them to the login page.
func (c *Client) Register(ctx context.Context, params RegisterParams) error {
	_, err := c.doJSON(ctx, http.MethodPost, pathRegister, "", params)
	return err
}

// WhoAmI fetches the user record belonging to the bearer token.
func (c *Client) WhoAmI(ctx context.Context, token string) (*model.User, error) {
	env, err := c.doJSON(ctx, http.MethodGet, pathWhoAmI, token, nil)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := decodeData(env, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfileParams carry the editable profile fields. Image, when
// non-nil, is an already-processed avatar to upload alongside.
type UpdateProfileParams struct {
	FullName    string
	Username    string
	Email       string
	PhoneNumber string
	Password    string // optional, only when changing
	Image       []byte
	ImageName   string
}

// UpdateProfile sends the multipart profile update and returns the
// replacement user record. The token is unchanged by this operation.
func (c *Client) UpdateProfile(ctx context.Context, token string, params UpdateProfileParams) (*model.User, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"fullName":    params.FullName,
		"username":    params.Username,
		"email":       params.Email,
		"phoneNumber": params.PhoneNumber,
	}
	if params.Password != "" {
		fields["password"] = params.Password
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("writing form field %q: %w", name, err)
		}
	}
	if len(params.Image) > 0 {
		name := params.ImageName
		if name == "" {
			name = "avatar.jpg"
		}
		part, err := mw.CreateFormFile("image", name)
		if err != nil {
			return nil, fmt.Errorf("creating image part: %w", err)
		}
		if _, err := part.Write(params.Image); err != nil {
			return nil, fmt.Errorf("writing image part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}

	env, err := c.do(ctx, http.MethodPut, pathUpdateProfile, token, &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := decodeData(env, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RequestPasswordReset asks the backend to mail a reset link.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := c.doJSON(ctx, http.MethodPost, pathRequestPasswordReset, "", map[string]string{"email": email})
	return err
}

// ResetPassword completes the reset flow using the emailed token.
func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	_, err := c.doJSON(ctx, http.MethodPost, pathResetPassword+resetToken, "", map[string]string{"password": newPassword})
	return err
}
