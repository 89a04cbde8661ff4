package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/go-company-site/internal/storage"
)

// Upload kinds accepted by UploadService.
const (
	KindProductImage  = "product-image"
	KindCategoryImage = "category-image"
	KindCatalog       = "catalog"
	KindResume        = "resume"
)

const (
	mimeDoc  = "application/msword"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

type uploadPolicy struct {
	maxBytes int64
	types    []string
	// signed uploads are private; callers get a time-limited URL.
	signed bool
}

var imageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

var uploadPolicies = map[string]uploadPolicy{
	KindProductImage:  {maxBytes: 5 << 20, types: imageTypes},
	KindCategoryImage: {maxBytes: 5 << 20, types: imageTypes},
	KindCatalog:       {maxBytes: 10 << 20, types: []string{"application/pdf"}},
	KindResume:        {maxBytes: 10 << 20, types: []string{"application/pdf", mimeDoc, mimeDocx}, signed: true},
}

// UploadFile is one file received from a multipart form.
type UploadFile struct {
	Name         string // client file name
	DeclaredType string // Content-Type part header
	Size         int64
	Body         io.Reader
}

// UploadService validates files against the per-kind policy and writes them
// to the storage backend. Nothing reaches the backend unless the file passes.
type UploadService struct {
	Storage storage.Backend
	// SignedURLTTL bounds the lifetime of URLs returned for private kinds.
	SignedURLTTL time.Duration

	now func() time.Time
}

const uploadTracer = "services/UploadService"

// Upload stores f under "<kind>/<unixmillis>_<sanitized name>" and returns
// the URL to save with the owning record.
func (s *UploadService) Upload(ctx context.Context, kind string, f UploadFile) (string, error) {
	ctx, span := startSpan(ctx, uploadTracer, "Upload",
		attribute.String("upload.kind", kind),
		attribute.Int64("upload.size", f.Size),
	)
	defer span.End()

	pol, ok := uploadPolicies[kind]
	if !ok {
		return "", ErrUnknownUploadKind
	}
	if f.Size <= 0 {
		return "", ErrEmptyUpload
	}
	if f.Size > pol.maxBytes {
		return "", fmt.Errorf("%w: maximum is %d MB", ErrUploadTooLarge, pol.maxBytes>>20)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	head = head[:n]
	if n == 0 {
		return "", ErrEmptyUpload
	}
	ctype, ok := detectType(head, f.DeclaredType, pol.types)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUploadType, ctype)
	}

	key := ObjectKey(kind, f.Name, s.clock())
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), f.Body), pol.maxBytes)
	url, err := s.Storage.Put(ctx, storage.Object{
		Key:         key,
		Body:        body,
		Size:        f.Size,
		ContentType: ctype,
	})
	if err != nil {
		return "", err
	}
	if pol.signed {
		return s.Storage.SignedURL(ctx, key, s.SignedURLTTL)
	}
	return url, nil
}

func (s *UploadService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// detectType sniffs head and checks it against allowed. Office documents
// sniff as zip or octet-stream, so for those the declared type is trusted
// when it is itself allowed.
func detectType(head []byte, declared string, allowed []string) (string, bool) {
	sniffed := baseType(http.DetectContentType(head))
	if contains(allowed, sniffed) {
		return sniffed, true
	}
	decl := baseType(declared)
	if (sniffed == "application/zip" || sniffed == "application/octet-stream") &&
		(decl == mimeDoc || decl == mimeDocx) && contains(allowed, decl) {
		return decl, true
	}
	return sniffed, false
}

func baseType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectKey builds the storage key for an upload.
func ObjectKey(kind, filename string, at time.Time) string {
	return kind + "/" + strconv.FormatInt(at.UnixMilli(), 10) + "_" + SanitizeFilename(filename)
}

// SanitizeFilename strips directories and replaces runs of unsafe
// characters with "_".
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeName.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if len(name) > 100 {
		ext := path.Ext(name)
		if len(ext) > 10 {
			ext = ""
		}
		name = name[:100-len(ext)] + ext
	}
	if name == "" {
		return "file"
	}
	return name
}
