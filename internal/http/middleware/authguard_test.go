package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tbourn/go-company-site/internal/auth"
)

type stubVerifier struct {
	claims auth.Claims
	err    error
	calls  int
}

func (s *stubVerifier) Session(raw string) (auth.Claims, error) {
	s.calls++
	if s.err != nil {
		return auth.Claims{}, s.err
	}
	if raw != "good" {
		return auth.Claims{}, auth.ErrInvalidSession
	}
	return s.claims, nil
}

func guardRouter(v SessionVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), AuthGuard(v))
	show := func(c *gin.Context) {
		id, email, _ := AdminFrom(c)
		c.String(http.StatusOK, "admin content "+id+" "+email+" "+SessionStateFrom(c).String())
	}
	r.GET("/admin", show)
	r.GET("/admin/products", show)
	r.GET("/admin/login", show)
	r.GET("/admin/reset-password", show)
	r.GET("/api/admin/jobs", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })
	return r
}

func withSession(req *http.Request, raw string) *http.Request {
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: raw})
	return req
}

func TestAuthGuard_ValidSessionPassesThrough(t *testing.T) {
	v := &stubVerifier{claims: auth.Claims{UserID: "u1", Email: "admin@example.com"}}
	r := guardRouter(v)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/admin/products", nil), "good"))
	if w.Code != http.StatusOK || w.Body.String() != "admin content u1 admin@example.com authenticated" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/api/admin/jobs", nil), "good"))
	if w.Code != http.StatusOK {
		t.Fatalf("api with session = %d", w.Code)
	}
}

func TestAuthGuard_PagesRedirectWithoutContent(t *testing.T) {
	base := testutil.ToFloat64(authRejects.WithLabelValues("page"))
	cases := map[string]*stubVerifier{
		"no cookie":      {},
		"invalid cookie": {},
		"verifier error": {err: errors.New("key store down")},
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			r := guardRouter(v)
			req := httptest.NewRequest(http.MethodGet, "/admin/products?tab=2", nil)
			switch name {
			case "invalid cookie":
				withSession(req, "forged")
			case "verifier error":
				withSession(req, "good")
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusSeeOther {
				t.Fatalf("status = %d; want 303", w.Code)
			}
			if got := w.Header().Get("Location"); got != "/admin/login?next=%2Fadmin%2Fproducts%3Ftab%3D2" {
				t.Fatalf("Location = %q", got)
			}
			if strings.Contains(w.Body.String(), "admin content") || !strings.Contains(w.Body.String(), "Redirecting…") {
				t.Fatalf("body = %q", w.Body.String())
			}
		})
	}
	if got := testutil.ToFloat64(authRejects.WithLabelValues("page")); got != base+3 {
		t.Fatalf("page rejections = %v; want %v", got, base+3)
	}
}

func TestAuthGuard_APIAnswers401(t *testing.T) {
	r := guardRouter(&stubVerifier{})
	req := httptest.NewRequest(http.MethodGet, "/api/admin/jobs", nil)
	req.Header.Set(requestIDHeader, "rid-401")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", w.Code)
	}
	if w.Header().Get("Location") != "" {
		t.Fatalf("API must not redirect")
	}
	body := w.Body.String()
	if !strings.Contains(body, `"error":"authentication required"`) || !strings.Contains(body, `"request_id":"rid-401"`) {
		t.Fatalf("body = %s", body)
	}
}

func TestAuthGuard_WhitelistedPages(t *testing.T) {
	r := guardRouter(&stubVerifier{})
	for _, p := range []string{"/admin/login", "/admin/reset-password?token=abc"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		if w.Code != http.StatusOK || !strings.HasSuffix(w.Body.String(), "unauthenticated") {
			t.Fatalf("%s: %d %q", p, w.Code, w.Body.String())
		}
	}
}

func TestSessionState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if SessionStateFrom(c) != SessionLoading || SessionLoading.String() != "loading" {
		t.Fatalf("unguarded request should report loading")
	}
	if _, _, ok := AdminFrom(c); ok {
		t.Fatalf("no admin expected")
	}
}
