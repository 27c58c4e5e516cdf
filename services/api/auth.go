package apiclient

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/rosterdash/core/session"
)

var (
	// errors
	ErrInvalidCredentials = errors.New("Invalid credentials")
)

type authResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

func (c *Client) Login(ctx context.Context, creds session.Credentials) (session.Session, error) {
	return c.authenticate(ctx, "/auth/login", creds)
}

// Register creates a STUDENT account and logs it in.
func (c *Client) Register(ctx context.Context, creds session.Credentials) (session.Session, error) {
	return c.authenticate(ctx, "/auth/register", creds)
}

func (c *Client) authenticate(ctx context.Context, path string, creds session.Credentials) (session.Session, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, path, creds, &resp); err != nil {
		return session.Session{}, err
	}
	if resp.Token == "" || resp.Role == "" {
		return session.Session{}, ErrInvalidCredentials
	}
	if resp.Username == "" {
		resp.Username = creds.Username
	}
	return session.Session{Token: resp.Token, Role: resp.Role, Username: resp.Username}, nil
}
