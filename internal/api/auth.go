package api

import (
	"context"
	"net/http"

	"pioneer-cli/internal/model"
)

// Signup registers a new account. Unauthenticated.
func (c *Client) Signup(ctx context.Context, req model.SignupRequest) (model.UserProfile, error) {
	var created model.UserProfile
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/signup/", req, &created, false); err != nil {
		return model.UserProfile{}, err
	}
	return created, nil
}

// Login exchanges credentials for an access token. Unauthenticated; the
// caller stores the token in the session and hands it back via SetSession.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	var resp model.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login/", req, &resp, false); err != nil {
		return model.LoginResponse{}, err
	}
	return resp, nil
}
