package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"github.com/kehila-platform/kehila/internal/config"
	"github.com/kehila-platform/kehila/pkg/store"
)

// Client talks to the hosted community platform. It implements the pkg/store
// capability interfaces over the platform's REST surface. The app id and API
// key are attached once here; call sites never handle credentials.
type Client struct {
	cfg    config.BackendConfig
	base   *url.URL
	client *http.Client

	closed int32 // atomic flag for Close()
}

// package-level logger for pkg/backend; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by pkg/backend. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// NewClient creates a new platform client.
func NewClient(cfg config.BackendConfig, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if cfg.AppID == "" {
		return nil, fmt.Errorf("app id is required")
	}

	c := &Client{
		cfg:    cfg,
		base:   u,
		client: httpClient,
	}
	logger.Info("backend: NewClient created", slog.String("base_url", cfg.BaseURL), slog.String("app_id", cfg.AppID))
	return c, nil
}

func NewDefaultClient(cfg config.BackendConfig) (*Client, error) {
	defaultClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 15 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return NewClient(cfg, defaultClient)
}

var _ store.Backend = (*Client)(nil)

// Close releases any resources held by the client. Close is idempotent and
// safe to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.client != nil && c.client.Transport != nil {
		if tr, ok := c.client.Transport.(interface{ CloseIdleConnections() }); ok {
			tr.CloseIdleConnections()
		}
	}
	return nil
}

// appPath builds an app-scoped API path.
func (c *Client) appPath(parts ...string) string {
	p := "/api/apps/" + url.PathEscape(c.cfg.AppID)
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// errorBody is the shape of a platform error response.
type errorBody struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Missing []string `json:"missing"`
}

// do issues one request and decodes the response into out (when non-nil).
// Requests are never retried; any transport or non-2xx failure is mapped to
// the pkg/store error taxonomy by the caller via mapError.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	u := c.base.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("api_key", c.cfg.APIKey)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		msg := resp.Status
		if b, rerr := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); rerr == nil && len(b) > 0 {
			if jerr := json.Unmarshal(b, &eb); jerr == nil {
				if eb.Message != "" {
					msg = eb.Message
				} else if eb.Error != "" {
					msg = eb.Error
				}
			}
		}
		return &httpError{status: resp.StatusCode, message: msg, missing: eb.Missing}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// httpError is the raw transport-level failure before mapping.
type httpError struct {
	status  int
	message string
	missing []string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("status %d: %s", e.status, e.message)
}

// mapError converts a transport failure into the store error taxonomy. 404
// becomes NotFoundError, 400/422 with a missing-field list becomes
// ValidationError, anything else is an opaque RemoteError.
func mapError(op, entity, id string, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := err.(*httpError); ok {
		switch {
		case he.status == http.StatusNotFound && entity != "":
			return &store.NotFoundError{Entity: entity, ID: id}
		case (he.status == http.StatusBadRequest || he.status == http.StatusUnprocessableEntity) && len(he.missing) > 0:
			return &store.ValidationError{Entity: entity, Missing: he.missing}
		default:
			return &store.RemoteError{Op: op, Status: he.status, Err: fmt.Errorf("%s", he.message)}
		}
	}
	return &store.RemoteError{Op: op, Err: err}
}
