package handlers

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-company-site/internal/cache"
	"github.com/tbourn/go-company-site/internal/http/middleware"
	"github.com/tbourn/go-company-site/internal/i18n"
	"github.com/tbourn/go-company-site/internal/repo"
	"github.com/tbourn/go-company-site/internal/revalidate"
	"github.com/tbourn/go-company-site/internal/services"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestPages(t *testing.T) *Pages {
	t.Helper()
	loader, err := i18n.NewLoader()
	if err != nil {
		t.Fatalf("i18n loader: %v", err)
	}
	p, err := NewPages(loader)
	if err != nil {
		t.Fatalf("NewPages: %v", err)
	}
	p.now = func() time.Time { return time.Date(2031, 5, 1, 0, 0, 0, 0, time.UTC) }
	return p
}

// env is the site wired over a real in-memory store, without the auth guard.
type env struct {
	db     *gorm.DB
	store  *cache.Store
	router *gin.Engine
}

func newEnv(t *testing.T, mutate ...func(*Deps)) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	store := cache.NewStore()
	disp := revalidate.New(store)

	d := Deps{
		DB:           db,
		Jobs:         &services.JobService{DB: db, Revalidate: disp},
		Categories:   &services.CategoryService{DB: db, Revalidate: disp},
		Products:     &services.ProductService{DB: db, Revalidate: disp},
		Testimonials: &services.TestimonialService{DB: db, Revalidate: disp},
		Statistics:   &services.StatisticService{DB: db, Revalidate: disp},
		Inbox:        &services.InboxService{DB: db, Cache: store, Revalidate: disp},
		Reader:       &services.ContentReader{DB: db, Cache: store, ShowTestimonials: true},
		Pages:        newTestPages(t),
		SessionTTL:   time.Hour,
	}
	for _, m := range mutate {
		m(&d)
	}
	h := New(d)

	r := gin.New()
	r.Use(middleware.RequestID())
	h.MountAdmin(r.Group("/api/admin"))
	api := r.Group("/api")
	if d.Submissions != nil {
		h.MountSubmissions(api)
	}
	if d.Auth != nil {
		h.MountAuth(api.Group("/auth"))
	}
	h.MountAdminPages(r.Group("/admin"))
	h.MountPages(r.Group("", middleware.Locale(middleware.LocaleOptions{})))
	h.MountLocaleSwitch(r)
	r.NoRoute(middleware.Locale(middleware.LocaleOptions{}), h.NotFoundPage)

	return &env{db: db, store: store, router: r}
}

func (e *env) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		if headers[i] == "Host" {
			req.Host = headers[i+1]
			continue
		}
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d; want %d; body=%s", w.Code, want, w.Body.String())
	}
}

