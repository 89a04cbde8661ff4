package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// TableStats returns the number of rows of T matching scopes and their latest
// updated_at, or nil when nothing matches. The admin list ETags are derived
// from these two values.
func TableStats[T any](ctx context.Context, db *gorm.DB, scopes ...func(*gorm.DB) *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	var model T
	base := func() *gorm.DB { return db.WithContext(ctx).Model(&model).Scopes(scopes...) }

	// Count
	if err = base().Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = base().Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
