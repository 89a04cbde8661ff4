package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tbourn/go-company-site/internal/config"
)

// S3 stores files in an S3-compatible bucket.
type S3 struct {
	cl        *minio.Client
	bucket    string
	publicURL string
}

// NewS3 builds a minio client for cfg. No network call is made.
func NewS3(cfg config.S3Config) (*S3, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, err
	}
	pub := cfg.PublicURL
	if pub == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		pub = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &S3{cl: cl, bucket: cfg.Bucket, publicURL: strings.TrimRight(pub, "/")}, nil
}

// Put uploads obj and returns its public URL.
func (s *S3) Put(ctx context.Context, obj Object) (string, error) {
	size := obj.Size
	if size <= 0 {
		size = -1
	}
	_, err := s.cl.PutObject(ctx, s.bucket, obj.Key, obj.Body, size, minio.PutObjectOptions{
		ContentType: obj.ContentType,
	})
	if err != nil {
		return "", err
	}
	return s.publicURL + "/" + escapeKey(obj.Key), nil
}

// SignedURL presigns a GET for key.
func (s *S3) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.cl.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// escapeKey escapes each path segment but keeps the separators.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
