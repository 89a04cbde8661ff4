package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-company-site/internal/notify"
	"github.com/tbourn/go-company-site/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())

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

// recorder is a Revalidator that remembers every call as "kind:ids".
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(kind string, ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := kind
	for _, id := range ids {
		s += ":" + id
	}
	r.calls = append(r.calls, s)
}

func (r *recorder) Jobs() { r.add("jobs") }
func (r *recorder) Products(ids ...string) { r.add("products", ids...) }
func (r *recorder) Categories(ids ...string) { r.add("categories", ids...) }
func (r *recorder) Testimonials() { r.add("testimonials") }
func (r *recorder) Statistics() { r.add("statistics") }
func (r *recorder) Messages() { r.add("messages") }
func (r *recorder) Applications() { r.add("applications") }
func (r *recorder) Enquiries() { r.add("enquiries") }

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return ""
	}
	return r.calls[len(r.calls)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// fakeMailer captures sent e-mail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.Email
	err  error
}

func (m *fakeMailer) Send(_ context.Context, e notify.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, e)
	return nil
}

func ptr[T any](v T) *T { return &v }
