package api

import (
	"context"
	"errors"
	"fmt"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token and stores it. Bad
// credentials come back as *AuthError or a 404 *StatusError.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	req := loginRequest{Username: username, Password: password}
	if err := c.post(ctx, "/api/auth/login", req, &resp); err != nil {
		return "", fmt.Errorf("logging in as %s: %w", username, err)
	}
	if resp.Token == "" {
		return "", errors.New("logging in: response has no token")
	}
	if c.tokens != nil {
		if err := c.tokens.SetToken(resp.Token); err != nil {
			return "", fmt.Errorf("storing token: %w", err)
		}
	}
	return resp.Token, nil
}

// Logout forgets the stored token. The backend keeps no session state.
func (c *Client) Logout() error {
	if c.tokens == nil {
		return nil
	}
	return c.tokens.ClearToken()
}
