package app

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/go-company-site/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Port:              "0",
		ReadTimeout:       time.Second,
		ReadHeaderTimeout: time.Second,
		WriteTimeout:      time.Second,
		IdleTimeout:       time.Second,
		MaxHeaderBytes:    1 << 20,
		GinMode:           "test",
		PublicBaseURL:     "http://localhost:8080",
		LogLevel:          "error",
		DB:                config.DBConfig{Driver: "sqlite", Path: filepath.Join(dir, "site.db")},
		RateRPS:           10,
		RateBurst:         10,
		Auth: config.AuthConfig{
			SessionSecret: strings.Repeat("s", 32),
			SessionTTL:    time.Hour,
			AdminEmail:    "admin@example.com",
			AdminPassword: "bootstrap-password",
		},
		Email: config.EmailConfig{From: "site@example.com", To: "office@example.com"},
		Storage: config.StorageConfig{
			Backend:      "local",
			UploadDir:    filepath.Join(dir, "uploads"),
			PublicBase:   "/uploads",
			SignedURLTTL: time.Hour,
		},
		ShowTestimonials:   true,
		ReorderConcurrency: 2,
		OTEL:               config.OTELConfig{ServiceName: "company-site"},
	}
}

func TestBuild_ServesSiteAndBootstrapsAdmin(t *testing.T) {
	a, err := Build(context.Background(), testConfig(t), "test")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { _ = a.close(context.Background()) })

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"admin@example.com","password":"bootstrap-password"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	a.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("bootstrap admin cannot log in: %d %s", w.Code, w.Body.String())
	}
}

func TestBuild_UnsupportedStorageFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "ftp"
	if _, err := Build(context.Background(), cfg, "test"); err == nil {
		t.Fatalf("expected storage error")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	_ = ln.Close()
	cfg.Port = port

	a, err := Build(context.Background(), cfg, "test")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	url := "http://127.0.0.1:" + port + "/health"
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatalf("run did not return after cancel")
	}
}
