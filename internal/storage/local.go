package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Local stores files under a directory served by the HTTP layer at
// publicBase.
type Local struct {
	dir        string
	publicBase string
}

// NewLocal creates dir when missing.
func NewLocal(dir, publicBase string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if publicBase == "" {
		publicBase = "/uploads"
	}
	return &Local{dir: dir, publicBase: strings.TrimRight(publicBase, "/")}, nil
}

// Dir is the root directory, for mounting as a static route.
func (l *Local) Dir() string { return l.dir }

// PublicBase is the URL prefix files are served under.
func (l *Local) PublicBase() string { return l.publicBase }

// Put writes obj atomically (temp file + rename).
func (l *Local) Put(_ context.Context, obj Object) (string, error) {
	clean := path.Clean("/" + obj.Key)[1:]
	if clean == "" || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid object key %q", obj.Key)
	}
	dst := filepath.Join(l.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, obj.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return l.publicBase + "/" + clean, nil
}

// SignedURL returns the plain public path; the local backend has no signing.
func (l *Local) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return l.publicBase + "/" + strings.TrimLeft(key, "/"), nil
}
