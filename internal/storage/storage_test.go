package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/storage"

	"github.com/tbourn/go-company-site/internal/config"
)

func TestLocal_PutWritesFileAndReturnsURL(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/uploads/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	url, err := l.Put(context.Background(), Object{Key: "product-image/1700000000000_photo.png", Body: strings.NewReader("png-bytes")})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "/uploads/product-image/1700000000000_photo.png" {
		t.Fatalf("url = %q", url)
	}
	b, err := os.ReadFile(filepath.Join(dir, "product-image", "1700000000000_photo.png"))
	if err != nil || string(b) != "png-bytes" {
		t.Fatalf("file content = %q err=%v", b, err)
	}

	signed, _ := l.SignedURL(context.Background(), "resume/1_cv.pdf", time.Hour)
	if signed != "/uploads/resume/1_cv.pdf" {
		t.Fatalf("signed = %q", signed)
	}
}

func TestLocal_RejectsEscapingKeys(t *testing.T) {
	l, _ := NewLocal(t.TempDir(), "")
	for _, key := range []string{"", "/"} {
		if _, err := l.Put(context.Background(), Object{Key: key, Body: strings.NewReader("x")}); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
	// "../x" is cleaned to "x" inside the root.
	url, err := l.Put(context.Background(), Object{Key: "../x", Body: strings.NewReader("x")})
	if err != nil || url != "/uploads/x" {
		t.Fatalf("cleaned key: url=%q err=%v", url, err)
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	b, err := New(context.Background(), config.StorageConfig{Backend: "local", UploadDir: t.TempDir(), PublicBase: "/files"})
	if err != nil {
		t.Fatalf("New(local): %v", err)
	}
	if _, ok := b.(*Local); !ok {
		t.Fatalf("expected *Local, got %T", b)
	}
	if _, err := New(context.Background(), config.StorageConfig{Backend: "ftp"}); !errors.Is(err, ErrUnsupportedBackend) {
		t.Fatalf("expected ErrUnsupportedBackend, got %v", err)
	}
}

func TestS3_PublicURLAndPresign(t *testing.T) {
	s, err := NewS3(config.S3Config{
		Endpoint: "project.supabase.co", Bucket: "media", AccessKey: "ak", SecretKey: "sk",
		Region: "eu-central-1", UseSSL: true, PathStyle: true,
	})
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	if s.publicURL != "https://project.supabase.co/media" {
		t.Fatalf("publicURL = %q", s.publicURL)
	}
	// Presigning is offline when the region is known.
	u, err := s.SignedURL(context.Background(), "resume/1_cv.pdf", time.Hour)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	if !strings.Contains(u, "X-Amz-Signature=") || !strings.Contains(u, "/media/resume/1_cv.pdf") {
		t.Fatalf("unexpected presigned url: %s", u)
	}
}

func TestEscapeKey(t *testing.T) {
	if got := escapeKey("catalog/1_my file.pdf"); got != "catalog/1_my%20file.pdf" {
		t.Fatalf("escapeKey = %q", got)
	}
}

type fakeWriter struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (w *fakeWriter) Close() error { w.closed = true; return w.closeErr }

type fakeBucket struct {
	w       *fakeWriter
	key     string
	ctype   string
	signErr error
}

func (b *fakeBucket) NewWriter(_ context.Context, key, contentType string) io.WriteCloser {
	b.key, b.ctype = key, contentType
	return b.w
}

func (b *fakeBucket) SignedURL(key string, opts *storage.SignedURLOptions) (string, error) {
	if b.signErr != nil {
		return "", b.signErr
	}
	return "https://signed.example/" + key + "?m=" + opts.Method, nil
}

func TestGCS_PutAndSign(t *testing.T) {
	fb := &fakeBucket{w: &fakeWriter{}}
	g := &GCS{bucket: fb, name: "site-media"}

	url, err := g.Put(context.Background(), Object{Key: "catalog/1_a b.pdf", Body: strings.NewReader("%PDF"), ContentType: "application/pdf"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "https://storage.googleapis.com/site-media/catalog/1_a%20b.pdf" {
		t.Fatalf("url = %q", url)
	}
	if fb.ctype != "application/pdf" || fb.w.String() != "%PDF" || !fb.w.closed {
		t.Fatalf("writer not used correctly: ctype=%q body=%q closed=%v", fb.ctype, fb.w.String(), fb.w.closed)
	}

	signed, err := g.SignedURL(context.Background(), "resume/1_cv.pdf", time.Hour)
	if err != nil || signed != "https://signed.example/resume/1_cv.pdf?m=GET" {
		t.Fatalf("SignedURL = %q, %v", signed, err)
	}

	fb.w = &fakeWriter{closeErr: errors.New("quota")}
	if _, err := g.Put(context.Background(), Object{Key: "k", Body: strings.NewReader("x")}); err == nil {
		t.Fatalf("expected close error to surface")
	}
}

func TestGCSOptions(t *testing.T) {
	if n := len(gcsOptions("", "")); n != 0 {
		t.Fatalf("default options = %d, want ADC only", n)
	}
	if n := len(gcsOptions("/etc/sa.json", "")); n != 1 {
		t.Fatalf("credentials file options = %d", n)
	}
	if n := len(gcsOptions("", "http://localhost:4443/storage/v1/")); n != 2 {
		t.Fatalf("emulator options = %d", n)
	}
}
