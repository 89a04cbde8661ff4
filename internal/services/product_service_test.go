package services

import (
	"context"
	"errors"
	"testing"
)

func TestProduct_CreateRequiresCategory(t *testing.T) {
	svc := &ProductService{DB: newTestDB(t), Revalidate: &recorder{}}
	_, err := svc.Create(context.Background(), ProductInput{CategoryID: "nope", Name: "X"})
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestProduct_MoveCategoryRevalidatesBoth(t *testing.T) {
	db := newTestDB(t)
	rec := &recorder{}
	cats := &CategoryService{DB: db, Revalidate: rec}
	svc := &ProductService{DB: db, Revalidate: rec}
	ctx := context.Background()

	c1, _ := cats.Create(ctx, CategoryInput{Title: "One", Route: "one"})
	c2, _ := cats.Create(ctx, CategoryInput{Title: "Two", Route: "two"})

	p, err := svc.Create(ctx, ProductInput{CategoryID: c1.ID, Name: "Widget"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.last() != "products:"+c1.ID {
		t.Fatalf("create revalidation = %q", rec.last())
	}

	moved, err := svc.Patch(ctx, p.ID, ProductPatch{CategoryID: ptr(c2.ID)})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if moved.CategoryID != c2.ID || moved.Name != "Widget" {
		t.Fatalf("unexpected product: %+v", moved)
	}
	if rec.last() != "products:"+c1.ID+":"+c2.ID {
		t.Fatalf("move revalidation = %q", rec.last())
	}

	if _, err := svc.Patch(ctx, p.ID, ProductPatch{CategoryID: ptr("ghost")}); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}

	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.last() != "products:"+c2.ID {
		t.Fatalf("delete revalidation = %q", rec.last())
	}
}

func TestProduct_ReorderScopedToCategory(t *testing.T) {
	db := newTestDB(t)
	rec := &recorder{}
	cats := &CategoryService{DB: db, Revalidate: rec}
	svc := &ProductService{DB: db, Revalidate: rec}
	ctx := context.Background()

	c1, _ := cats.Create(ctx, CategoryInput{Title: "One", Route: "one"})
	c2, _ := cats.Create(ctx, CategoryInput{Title: "Two", Route: "two"})
	a, _ := svc.Create(ctx, ProductInput{CategoryID: c1.ID, Name: "A"})
	b, _ := svc.Create(ctx, ProductInput{CategoryID: c1.ID, Name: "B"})
	other, _ := svc.Create(ctx, ProductInput{CategoryID: c2.ID, Name: "Other"})

	if b.SortOrder != 1 || other.SortOrder != 0 {
		t.Fatalf("sort order should be per category: b=%d other=%d", b.SortOrder, other.SortOrder)
	}

	if err := svc.Reorder(ctx, "", []string{a.ID}); !errors.Is(err, ErrCategoryRequired) {
		t.Fatalf("expected ErrCategoryRequired, got %v", err)
	}
	if err := svc.Reorder(ctx, c1.ID, []string{b.ID, a.ID}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if rec.last() != "products:"+c1.ID {
		t.Fatalf("reorder revalidation = %q", rec.last())
	}
	list, _ := svc.List(ctx, c1.ID)
	if len(list) != 2 || list[0].ID != b.ID || list[1].ID != a.ID {
		t.Fatalf("order after reorder: %+v", list)
	}

	if err := svc.Reorder(ctx, c1.ID, []string{other.ID}); err == nil {
		t.Fatalf("expected error when reordering a product of another category")
	}
}
