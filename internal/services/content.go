package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-company-site/internal/repo"
)

// Revalidator is notified after every successful content or inbox write.
// *revalidate.Dispatcher implements it.
type Revalidator interface {
	Jobs()
	Products(categoryIDs ...string)
	Categories(categoryIDs ...string)
	Testimonials()
	Statistics()
	Messages()
	Applications()
	Enquiries()
}

// defaultReorderLimit caps concurrent row updates when a service is built
// without an explicit limit.
const defaultReorderLimit = 4

func startSpan(ctx context.Context, tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracer).Start(ctx, name, trace.WithAttributes(attrs...))
}

func getRecord[T any](ctx context.Context, db *gorm.DB, id string) (*T, error) {
	rec, err := repo.Get[T](ctx, db, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return rec, nil
}

// updateRecord applies fields and returns the fresh row.
func updateRecord[T any](ctx context.Context, db *gorm.DB, id string, fields map[string]any) (*T, error) {
	if err := repo.UpdateFields[T](ctx, db, id, fields); err != nil {
		return nil, mapNotFound(err)
	}
	return getRecord[T](ctx, db, id)
}

func deleteRecord[T any](ctx context.Context, db *gorm.DB, id string) error {
	return mapNotFound(repo.Delete[T](ctx, db, id))
}

// validateIDs rejects empty lists, blank ids and duplicates.
func validateIDs(ids []string) error {
	if len(ids) == 0 {
		return ErrInvalidReorder
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return ErrInvalidReorder
		}
		if _, dup := seen[id]; dup {
			return ErrInvalidReorder
		}
		seen[id] = struct{}{}
	}
	return nil
}

func reorderLimit(n int) int {
	if n < 1 {
		return defaultReorderLimit
	}
	return n
}

// ---- field map helpers ----

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func setStr(m map[string]any, col string, v *string) {
	if v != nil {
		m[col] = strings.TrimSpace(*v)
	}
}

func setBool(m map[string]any, col string, v *bool) {
	if v != nil {
		m[col] = *v
	}
}
