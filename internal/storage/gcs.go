package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// gcsBucket is the slice of *storage.BucketHandle used by GCS, so tests can
// substitute a fake.
type gcsBucket interface {
	NewWriter(ctx context.Context, key, contentType string) io.WriteCloser
	SignedURL(key string, opts *storage.SignedURLOptions) (string, error)
}

type gcsBucketAdapter struct {
	handle *storage.BucketHandle
}

func (a gcsBucketAdapter) NewWriter(ctx context.Context, key, contentType string) io.WriteCloser {
	w := a.handle.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	return w
}

func (a gcsBucketAdapter) SignedURL(key string, opts *storage.SignedURLOptions) (string, error) {
	return a.handle.SignedURL(key, opts)
}

// GCS stores files in a Google Cloud Storage bucket. Credentials come from
// a service account file when configured, otherwise from the environment
// (ADC).
type GCS struct {
	bucket gcsBucket
	name   string
}

// NewGCS creates a storage client for bucket.
func NewGCS(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCS, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCS{bucket: gcsBucketAdapter{handle: client.Bucket(bucket)}, name: bucket}, nil
}

// Put streams obj into the bucket.
func (g *GCS) Put(ctx context.Context, obj Object) (string, error) {
	w := g.bucket.NewWriter(ctx, obj.Key, obj.ContentType)
	if _, err := io.Copy(w, obj.Body); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.name, escapeKey(obj.Key)), nil
}

// SignedURL returns a V4 signed GET URL.
func (g *GCS) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	return g.bucket.SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	})
}

// gcsOptions maps the storage configuration to client options. An endpoint
// (fake-gcs-server, emulators) disables authentication.
func gcsOptions(credentialsFile, endpoint string) []option.ClientOption {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}
	return opts
}
