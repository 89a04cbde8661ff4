// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the generic record helpers shared by all
// models keyed by a string ID.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a record is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// Create inserts v. The caller assigns the primary key.
func Create[T any](ctx context.Context, db *gorm.DB, v *T) error {
	return db.WithContext(ctx).Create(v).Error
}

// Get fetches a single record by primary key, or ErrNotFound.
func Get[T any](ctx context.Context, db *gorm.DB, id string) (*T, error) {
	var out T
	if err := db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateFields applies the column→value map to the record with the given id.
// UpdatedAt is bumped by GORM. Returns ErrNotFound when no row matched.
func UpdateFields[T any](ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	if len(fields) == 0 {
		// Still verify existence so PATCH {} on a missing id is a 404.
		_, err := Get[T](ctx, db, id)
		return err
	}
	var model T
	res := db.WithContext(ctx).
		Model(&model).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the record with the given id. Returns ErrNotFound when no
// row matched.
func Delete[T any](ctx context.Context, db *gorm.DB, id string) error {
	var model T
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// NextSortOrder returns max(sort_order)+1 within the optional scope, so new
// rows append to the end of the admin ordering.
func NextSortOrder[T any](ctx context.Context, db *gorm.DB, scopes ...func(*gorm.DB) *gorm.DB) (int, error) {
	var (
		model T
		top   sql.NullInt64
	)
	err := db.WithContext(ctx).
		Model(&model).
		Scopes(scopes...).
		Select("MAX(sort_order)").
		Row().
		Scan(&top)
	if err != nil {
		return 0, err
	}
	if !top.Valid {
		return 0, nil
	}
	return int(top.Int64) + 1, nil
}
