package backend

import (
	"context"
	"encoding/json"
	"net/http"
)

// Invoke calls a named server-side function with an opaque payload. There is
// no retry, batching or idempotency handling; every failure is surfaced as a
// RemoteError the caller must treat as non-retryable within the current
// interaction.
func (c *Client) Invoke(ctx context.Context, name string, payload any) (json.RawMessage, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	var out json.RawMessage
	err := c.do(ctx, http.MethodPost, c.appPath("functions", name), "", payload, &out)
	if err != nil {
		return nil, mapError("invoke "+name, "", "", err)
	}
	return out, nil
}
