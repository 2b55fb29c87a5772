package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"askida/internal/domain"
)

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	FullName    string      `json:"full_name"`
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	PhoneNumber string      `json:"phone_number"`
	Role        domain.Role `json:"user_type"`
}

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by register and login. The token sits next to data in the envelope.
type AuthResult struct {
	User    domain.User
	Token   string
	Message string
}

// Register creates an account and returns the signed-in user.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	env, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/register", body: req})
	if err != nil {
		return nil, err
	}
	return authResult(env)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	env, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: req})
	if err != nil {
		return nil, err
	}
	return authResult(env)
}

// Me returns the user behind the current token.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	env, err := c.do(ctx, call{method: http.MethodGet, path: "/auth/me", auth: true})
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := decodeInto(env, &user, "user"); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout invalidates the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/logout", auth: true})
	return err
}

func authResult(env *envelope) (*AuthResult, error) {
	var user domain.User
	if err := decodeInto(env, &user, "user"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(env.Token) == "" {
		return nil, fmt.Errorf("apiclient: auth response missing token")
	}
	return &AuthResult{User: user, Token: env.Token, Message: env.Message}, nil
}

var _ domain.AuthAPI = (*Client)(nil)
