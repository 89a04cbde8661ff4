package repo

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Reorder assigns sort_order = position for every id in ids on table. Each
// row is an independent UPDATE; up to limit run concurrently. There is no
// transaction: rows updated before a failure keep their new position.
//
// The scope (e.g. category_id = ?) restricts which rows may be touched; an id
// outside the scope counts as not found. The first error is returned after
// all updates have been attempted.
func Reorder(ctx context.Context, db *gorm.DB, table string, ids []string, limit int, scope func(*gorm.DB) *gorm.DB) error {
	if limit < 1 {
		limit = 1
	}
	now := time.Now().UTC()

	var g errgroup.Group
	g.SetLimit(limit)
	for pos, id := range ids {
		g.Go(func() error {
			q := db.WithContext(ctx).Table(table).Where("id = ?", id)
			if scope != nil {
				q = q.Scopes(scope)
			}
			res := q.Updates(map[string]any{"sort_order": pos, "updated_at": now})
			if res.Error != nil {
				return fmt.Errorf("reorder %s %s: %w", table, id, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("reorder %s %s: %w", table, id, gorm.ErrRecordNotFound)
			}
			return nil
		})
	}
	return g.Wait()
}
