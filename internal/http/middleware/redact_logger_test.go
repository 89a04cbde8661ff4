package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-company-site/internal/auth"
)

func TestRedactingLogger_MasksSessionAndScrubsPII(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/api/admin/applications/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	q := "email=a.b+tag@example.com&phone=+1-555-123-4567&id=123e4567-e89b-12d3-a456-426614174000"
	req := httptest.NewRequest(http.MethodGet, "/api/admin/applications/123?"+q, nil)
	req.Header.Set("Cookie", auth.CookieName+"=jwt-value")
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Api-Key", "shhh")
	req.Header.Set("X-Custom", "email a@b.com id=123e4567-e89b-12d3-a456-426614174000 phone 555-123-4567")
	req.Header.Set(requestIDHeader, "rid-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	logs := buf.String()
	if !strings.Contains(logs, `"path":"/api/admin/applications/:id"`) || !strings.Contains(logs, `"request_id":"rid-1"`) {
		t.Fatalf("route path or request id missing: %s", logs)
	}
	for _, want := range []string{`[REDACTED:email]`, `[REDACTED:phone]`, `[REDACTED:id]`} {
		if !strings.Contains(logs, want) {
			t.Fatalf("expected %s in query redactions: %s", want, logs)
		}
	}
	for _, h := range []string{"Authorization", "Cookie", "X-Api-Key"} {
		if !strings.Contains(logs, `"`+h+`":"[REDACTED]"`) {
			t.Fatalf("%s must be masked: %s", h, logs)
		}
	}
	if strings.Contains(logs, "jwt-value") {
		t.Fatalf("session cookie leaked: %s", logs)
	}
	if !strings.Contains(logs, `"X-Custom":"email [REDACTED:email] id=[REDACTED:id] phone [REDACTED:phone]"`) {
		t.Fatalf("expected redacted X-Custom header, got: %s", logs)
	}
}

func TestRedactingLogger_MasksResetToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/admin/reset-password", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/reset-password?token=s3cr3t-t0ken&lang=fr", nil))

	logs := buf.String()
	if strings.Contains(logs, "s3cr3t-t0ken") {
		t.Fatalf("reset token leaked: %s", logs)
	}
	if !strings.Contains(logs, `"query":"lang=fr&token=[REDACTED]"`) {
		t.Fatalf("unexpected query: %s", logs)
	}
}

func TestRedactingLogger_WarnAndErrorLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/error", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	reqWarn := httptest.NewRequest(http.MethodGet, "/warn", nil)
	reqWarn.Header.Set(requestIDHeader, "rid-warn")
	r.ServeHTTP(httptest.NewRecorder(), reqWarn)
	reqErr := httptest.NewRequest(http.MethodGet, "/error", nil)
	reqErr.Header.Set(requestIDHeader, "rid-err")
	r.ServeHTTP(httptest.NewRecorder(), reqErr)

	logs := buf.String()
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"request_id":"rid-warn"`) {
		t.Fatalf("warn log missing request id fallback: %s", logs)
	}
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, `"request_id":"rid-err"`) {
		t.Fatalf("error log missing request id fallback: %s", logs)
	}
}

func TestRedactQuery_Unparseable(t *testing.T) {
	if got := redactQuery("%zz&email=x@y.io", nil); strings.Contains(got, "x@y.io") {
		t.Fatalf("unparseable query not scrubbed: %q", got)
	}
}
