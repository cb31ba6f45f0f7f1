package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/kehila-platform/kehila/pkg/store"
)

// UploadFile stores a file publicly and returns its URL.
func (c *Client) UploadFile(ctx context.Context, f store.File) (*store.UploadResult, error) {
	return c.upload(ctx, c.appPath("files"), f)
}

// UploadPrivateFile stores a file behind access control and returns its URI.
func (c *Client) UploadPrivateFile(ctx context.Context, f store.File) (*store.UploadResult, error) {
	return c.upload(ctx, c.appPath("files", "private"), f)
}

func (c *Client) upload(ctx context.Context, path string, f store.File) (*store.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	if f.ContentType != "" {
		hdr.Set("Content-Type", f.ContentType)
	}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, &store.UploadError{Reason: "build request", Err: err}
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, &store.UploadError{Reason: "build request", Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &store.UploadError{Reason: "build request", Err: err}
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	u := c.base.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), &buf)
	if err != nil {
		return nil, &store.UploadError{Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.cfg.APIKey != "" {
		req.Header.Set("api_key", c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &store.UploadError{Reason: "transport", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return nil, &store.UploadError{Reason: fmt.Sprintf("status %d", resp.StatusCode), Err: fmt.Errorf("%s", string(b))}
	}

	var res store.UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, &store.UploadError{Reason: "decode response", Err: err}
	}
	return &res, nil
}
