package api

import (
	"context"
	"fmt"

	"github.com/smartexpense/smartexpense/internal/model"
)

type userResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.User, error) {
	var resp userResponse
	if err := c.post(ctx, "/auth/login", creds, &resp); err != nil {
		return model.User{}, err
	}
	if resp.User == nil {
		return model.User{}, fmt.Errorf("%w: login response has no user", ErrMalformed)
	}
	return *resp.User, nil
}

// Signup creates an account. The returned user is already logged in.
func (c *Client) Signup(ctx context.Context, s model.Signup) (model.User, error) {
	var resp userResponse
	if err := c.post(ctx, "/auth/signup", s, &resp); err != nil {
		return model.User{}, err
	}
	if resp.User == nil {
		return model.User{}, fmt.Errorf("%w: signup response has no user", ErrMalformed)
	}
	return *resp.User, nil
}

// Profile fetches the full profile of userID.
func (c *Client) Profile(ctx context.Context, userID int) (model.User, error) {
	var u model.User
	if err := c.get(ctx, fmt.Sprintf("/auth/profile/%d", userID), nil, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}
