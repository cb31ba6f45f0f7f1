package backend

import (
	"context"
	"net/http"

	"github.com/kehila-platform/kehila/pkg/store"
)

// Auth surface. Session lifecycle (refresh, expiry) is owned by the platform;
// tokens are threaded explicitly so there is no ambient current-user state in
// this client.

func (c *Client) Login(ctx context.Context, email, password string) (*store.Session, error) {
	body := map[string]string{"email": email, "password": password}
	var sess store.Session
	err := c.do(ctx, http.MethodPost, c.appPath("auth", "login"), "", body, &sess)
	if err != nil {
		return nil, mapError("login", "", "", err)
	}
	return &sess, nil
}

func (c *Client) Me(ctx context.Context, token string) (store.Record, error) {
	var rec store.Record
	err := c.do(ctx, http.MethodGet, c.appPath("auth", "me"), token, nil, &rec)
	if err != nil {
		return nil, mapError("me", "", "", err)
	}
	return rec, nil
}

func (c *Client) UpdateMe(ctx context.Context, token string, fields store.Fields) (store.Record, error) {
	var rec store.Record
	err := c.do(ctx, http.MethodPut, c.appPath("auth", "me"), token, fields, &rec)
	if err != nil {
		return nil, mapError("update me", "", "", err)
	}
	return rec, nil
}
