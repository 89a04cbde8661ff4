package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tbourn/go-company-site/internal/services"
)

type stubUploader struct {
	kind string
	name string
	data []byte
	err  error
}

func (s *stubUploader) Upload(_ context.Context, kind string, f services.UploadFile) (string, error) {
	s.kind, s.name = kind, f.Name
	s.data, _ = io.ReadAll(f.Body)
	if s.err != nil {
		return "", s.err
	}
	return "/uploads/" + kind + "/1700000000000_" + f.Name, nil
}

func multipartBody(t *testing.T, field, name string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func (e *env) upload(t *testing.T, path, field, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, ctype := multipartBody(t, field, name, data)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestUpload_AdminKinds(t *testing.T) {
	up := &stubUploader{}
	e := newEnv(t, func(d *Deps) { d.Uploads = up })

	w := e.upload(t, "/api/admin/uploads/product-image", "file", "pump.png", []byte("\x89PNG\r\n\x1a\n"))
	expectStatus(t, w, http.StatusOK)
	if got := decode[URLResponse](t, w.Body.Bytes()); got.URL != "/uploads/product-image/1700000000000_pump.png" {
		t.Fatalf("url = %q", got.URL)
	}
	if up.kind != services.KindProductImage || up.name != "pump.png" || len(up.data) != 8 {
		t.Fatalf("uploader got kind=%q name=%q %d bytes", up.kind, up.name, len(up.data))
	}

	w = e.upload(t, "/api/admin/uploads/resume", "file", "cv.pdf", []byte("%PDF-1.4"))
	expectStatus(t, w, http.StatusBadRequest)

	w = e.upload(t, "/api/admin/uploads/catalog", "attachment", "c.pdf", []byte("%PDF-1.4"))
	expectStatus(t, w, http.StatusBadRequest)
	if !strings.Contains(w.Body.String(), `"code":"upload_rejected"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestUpload_RejectionsMapTo400(t *testing.T) {
	for _, err := range []error{
		fmt.Errorf("%w: maximum is 5 MB", services.ErrUploadTooLarge),
		fmt.Errorf("%w: text/plain", services.ErrUploadType),
		services.ErrUnknownUploadKind,
		services.ErrEmptyUpload,
	} {
		up := &stubUploader{err: err}
		e := newEnv(t, func(d *Deps) { d.Uploads = up })
		w := e.upload(t, "/api/admin/uploads/product-image", "file", "big.png", []byte("x"))
		expectStatus(t, w, http.StatusBadRequest)
		resp := decode[ErrorResponse](t, w.Body.Bytes())
		if resp.Code != ErrCodeUploadRejected || resp.Error != err.Error() {
			t.Fatalf("resp = %+v", resp)
		}
	}
}

func TestUpload_PublicResume(t *testing.T) {
	up := &stubUploader{}
	e := newEnv(t, func(d *Deps) {
		d.Uploads = up
		d.Submissions = &stubSubmissions{}
	})
	w := e.upload(t, "/api/uploads/resume", "file", "cv.pdf", []byte("%PDF-1.4"))
	expectStatus(t, w, http.StatusOK)
	if up.kind != services.KindResume {
		t.Fatalf("kind = %q", up.kind)
	}
}

func TestUpload_StorageFailureIs500(t *testing.T) {
	up := &stubUploader{err: fmt.Errorf("put object: connection refused")}
	e := newEnv(t, func(d *Deps) { d.Uploads = up })
	w := e.upload(t, "/api/admin/uploads/catalog", "file", "c.pdf", []byte("%PDF-1.4"))
	expectStatus(t, w, http.StatusInternalServerError)
}
