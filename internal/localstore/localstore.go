package localstore

import (
	"log/slog"
	"time"

	"github.com/kehila-platform/kehila/internal/db"
	"github.com/kehila-platform/kehila/pkg/store"
)

// Store implements the full platform surface against a local sqlite database.
// It replaces the hosted backend in development and tests: same entity CRUD,
// same serverless functions by name, same upload and auth contracts.
type Store struct {
	conn   *db.DB
	logger *slog.Logger
	opts   Options
}

type Options struct {
	JWTSecret   string
	TokenTTL    time.Duration
	UploadDir   string
	FileBaseURL string // public URL prefix for stored files
}

// Ensure Store implements the public interfaces.
var _ store.EntityStore = (*Store)(nil)
var _ store.Functions = (*Store)(nil)
var _ store.Uploader = (*Store)(nil)
var _ store.Auth = (*Store)(nil)
var _ store.Registrar = (*Store)(nil)

func New(conn *db.DB, logger *slog.Logger, opts Options) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if opts.FileBaseURL == "" {
		opts.FileBaseURL = "/uploads"
	}
	return &Store{conn: conn, logger: logger, opts: opts}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

func nowDate() string {
	return time.Now().UTC().Format(time.RFC3339)
}
