package api

import (
	"context"
	"fmt"

	"github.com/procurehq/console/internal/model"
)

// ListUsers retrieves all user accounts. Requires an admin role.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.Get(ctx, "/users", &users); err != nil {
		return nil, fmt.Errorf("fetching users: %w", err)
	}
	return users, nil
}

// SetUserRole changes an account's role. Requires an admin role.
func (c *Client) SetUserRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	body := map[string]string{"role": string(role)}

	var user model.User
	if err := c.Put(ctx, "/users/"+id+"/role", body, &user); err != nil {
		return nil, fmt.Errorf("setting role for user %s: %w", id, err)
	}
	return &user, nil
}
