package api

import (
	"context"
	"fmt"

	"github.com/procurehq/console/internal/model"
)

// LoginRequest is the credential payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token issued on successful login.
type LoginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login exchanges credentials for a bearer token and installs it on
// the client.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	payload := LoginRequest{Email: email, Password: password}
	if err := checkPayload(payload); err != nil {
		return nil, err
	}

	var resp LoginResponse
	if err := c.Post(ctx, "/auth/login", payload, &resp); err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}

	c.SetToken(resp.Token)
	return &resp, nil
}

// CurrentUser queries the identity service for the account behind the
// installed token. An AuthError means the token is stale or absent.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.Get(ctx, "/auth/me", &user); err != nil {
		return nil, fmt.Errorf("fetching current user: %w", err)
	}
	return &user, nil
}

// Logout invalidates the session server-side. The local token is the
// caller's to clear.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.Post(ctx, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	return nil
}
