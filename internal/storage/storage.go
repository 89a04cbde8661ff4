// Package storage writes uploaded files to the configured backend: the local
// filesystem, an S3-compatible bucket (Supabase Storage, MinIO, AWS) or
// Google Cloud Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tbourn/go-company-site/internal/config"
)

// Object describes a file to store.
type Object struct {
	Key         string // "<kind>/<unixmillis>_<name>"
	Body        io.Reader
	Size        int64
	ContentType string
}

// Backend stores objects and produces URLs for them.
type Backend interface {
	// Put writes obj and returns its public URL.
	Put(ctx context.Context, obj Object) (string, error)
	// SignedURL returns a time-limited URL for a private object.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ErrUnsupportedBackend is returned by New for unknown backend names.
var ErrUnsupportedBackend = errors.New("storage: unsupported backend")

// New builds the backend selected in cfg.
func New(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Backend {
	case "local", "":
		return NewLocal(cfg.UploadDir, cfg.PublicBase)
	case "s3":
		return NewS3(cfg.S3)
	case "gcs":
		return NewGCS(ctx, cfg.GCSBucket, gcsOptions(cfg.GCSCredentialsFile, cfg.GCSEndpoint)...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.Backend)
	}
}
