package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-company-site/internal/domain"
)

func seedJob(t *testing.T, db *gorm.DB, id, title string, order int, active bool) *domain.Job {
	t.Helper()
	now := time.Now().UTC()
	j := &domain.Job{ID: id, Title: title, SortOrder: order, IsActive: active, CreatedAt: now, UpdatedAt: now}
	if err := Create(context.Background(), db, j); err != nil {
		t.Fatalf("seed job %s: %v", id, err)
	}
	return j
}

func TestGet_FoundAndNotFound(t *testing.T) {
	db := newTestDB(t)
	seedJob(t, db, "j1", "Engineer", 0, true)

	got, err := Get[domain.Job](context.Background(), db, "j1")
	if err != nil || got.Title != "Engineer" {
		t.Fatalf("Get: got=%+v err=%v", got, err)
	}
	if _, err := Get[domain.Job](context.Background(), db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateFields_SuccessAndNotFound(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	j := seedJob(t, db, "j1", "Engineer", 0, true)

	if err := UpdateFields[domain.Job](ctx, db, "j1", map[string]any{"title": "Senior Engineer", "is_active": false}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, _ := Get[domain.Job](ctx, db, "j1")
	if got.Title != "Senior Engineer" || got.IsActive {
		t.Fatalf("fields not applied: %+v", got)
	}
	if !got.UpdatedAt.After(j.UpdatedAt) && !got.UpdatedAt.Equal(j.UpdatedAt) {
		t.Fatalf("updated_at moved backwards")
	}

	if err := UpdateFields[domain.Job](ctx, db, "missing", map[string]any{"title": "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := UpdateFields[domain.Job](ctx, db, "missing", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty patch on missing id: expected ErrNotFound, got %v", err)
	}
	if err := UpdateFields[domain.Job](ctx, db, "j1", nil); err != nil {
		t.Fatalf("empty patch on existing id: %v", err)
	}
}

func TestDelete_SuccessAndNotFound(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedJob(t, db, "j1", "Engineer", 0, true)

	if err := Delete[domain.Job](ctx, db, "j1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := Delete[domain.Job](ctx, db, "j1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestNextSortOrder(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	n, err := NextSortOrder[domain.Job](ctx, db)
	if err != nil || n != 0 {
		t.Fatalf("empty table: n=%d err=%v", n, err)
	}
	seedJob(t, db, "j1", "A", 3, true)
	seedJob(t, db, "j2", "B", 7, true)
	n, err = NextSortOrder[domain.Job](ctx, db)
	if err != nil || n != 8 {
		t.Fatalf("want 8, got n=%d err=%v", n, err)
	}
}

func TestNextSortOrder_ScopedToCategory(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedCategory(t, db, "c1", "a", 0)
	seedCategory(t, db, "c2", "b", 1)
	seedProduct(t, db, "p1", "c1", 5)

	n, err := NextSortOrder[domain.Product](ctx, db, InCategory("c2"))
	if err != nil || n != 0 {
		t.Fatalf("other category should start at 0: n=%d err=%v", n, err)
	}
	n, err = NextSortOrder[domain.Product](ctx, db, InCategory("c1"))
	if err != nil || n != 6 {
		t.Fatalf("want 6, got n=%d err=%v", n, err)
	}
}
