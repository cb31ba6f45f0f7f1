package localstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kehila-platform/kehila/pkg/store"
)

// maxUploadSize mirrors the hosted platform's limit.
const maxUploadSize = 5 << 20

var allowedContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// UploadFile stores a file under the upload directory and returns a URL the
// gateway serves it from.
func (s *Store) UploadFile(ctx context.Context, f store.File) (*store.UploadResult, error) {
	name, err := s.save(ctx, f, false)
	if err != nil {
		return nil, err
	}
	return &store.UploadResult{FileURL: s.opts.FileBaseURL + "/" + name}, nil
}

// UploadPrivateFile stores a file under the access-controlled subdirectory
// and returns an opaque URI; private files are never served publicly.
func (s *Store) UploadPrivateFile(ctx context.Context, f store.File) (*store.UploadResult, error) {
	name, err := s.save(ctx, f, true)
	if err != nil {
		return nil, err
	}
	return &store.UploadResult{FileURI: "kehila-file://private/" + name}, nil
}

func (s *Store) save(ctx context.Context, f store.File, private bool) (string, error) {
	if len(f.Data) == 0 {
		return "", &store.UploadError{Reason: "empty file"}
	}
	if len(f.Data) > maxUploadSize {
		return "", &store.UploadError{Reason: fmt.Sprintf("file exceeds %d bytes", maxUploadSize)}
	}
	ext, ok := allowedContentTypes[f.ContentType]
	if !ok {
		return "", &store.UploadError{Reason: fmt.Sprintf("unsupported content type %q", f.ContentType)}
	}

	id := uuid.NewString()
	name := id + ext
	dir := s.opts.UploadDir
	if private {
		dir = filepath.Join(dir, "private")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &store.UploadError{Reason: "prepare upload dir", Err: err}
	}
	if err := os.WriteFile(filepath.Join(dir, name), f.Data, 0o644); err != nil {
		return "", &store.UploadError{Reason: "write file", Err: err}
	}

	priv := 0
	if private {
		priv = 1
	}
	if _, err := s.conn.Exec(ctx,
		`INSERT INTO files (id, name, content_type, size, private, created) VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, f.ContentType, len(f.Data), priv, now(),
	); err != nil {
		return "", &store.UploadError{Reason: "record file", Err: err}
	}

	return name, nil
}
