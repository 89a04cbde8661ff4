// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the list and lookup queries for the
// website content models: jobs, categories, products, testimonials and
// statistics.
//
// Lists are ordered deterministically by (sort_order ASC, created_at ASC,
// id ASC) so the admin ordering and the public pages agree.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-company-site/internal/domain"
)

const contentOrder = "sort_order ASC, created_at ASC, id ASC"

// ActiveOnly restricts a query to rows with is_active = true.
func ActiveOnly(db *gorm.DB) *gorm.DB { return db.Where("is_active = ?", true) }

// InCategory restricts a product query to one category.
func InCategory(categoryID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Where("category_id = ?", categoryID) }
}

// ListJobs returns jobs in display order. When activeOnly is set, inactive
// jobs are excluded (public careers page).
func ListJobs(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.Job, error) {
	var out []domain.Job
	q := db.WithContext(ctx).Order(contentOrder)
	if activeOnly {
		q = q.Scopes(ActiveOnly)
	}
	err := q.Find(&out).Error
	return out, err
}

// ListCategories returns categories in display order.
func ListCategories(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.Category, error) {
	var out []domain.Category
	q := db.WithContext(ctx).Order(contentOrder)
	if activeOnly {
		q = q.Scopes(ActiveOnly)
	}
	err := q.Find(&out).Error
	return out, err
}

// GetCategoryByRoute fetches a category by its URL slug, or ErrNotFound.
func GetCategoryByRoute(ctx context.Context, db *gorm.DB, route string) (*domain.Category, error) {
	var c domain.Category
	if err := db.WithContext(ctx).Where("route = ?", route).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListProducts returns products in display order, optionally restricted to
// one category (empty categoryID means all categories).
func ListProducts(ctx context.Context, db *gorm.DB, categoryID string, activeOnly bool) ([]domain.Product, error) {
	var out []domain.Product
	q := db.WithContext(ctx).Order(contentOrder)
	if categoryID != "" {
		q = q.Scopes(InCategory(categoryID))
	}
	if activeOnly {
		q = q.Scopes(ActiveOnly)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountProductsInCategory returns how many products reference categoryID.
func CountProductsInCategory(ctx context.Context, db *gorm.DB, categoryID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("category_id = ?", categoryID).
		Count(&n).Error
	return n, err
}

// ListTestimonials returns testimonials in display order.
func ListTestimonials(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.Testimonial, error) {
	var out []domain.Testimonial
	q := db.WithContext(ctx).Order(contentOrder)
	if activeOnly {
		q = q.Scopes(ActiveOnly)
	}
	err := q.Find(&out).Error
	return out, err
}

// ListStatistics returns statistics in display order.
func ListStatistics(ctx context.Context, db *gorm.DB) ([]domain.Statistic, error) {
	var out []domain.Statistic
	err := db.WithContext(ctx).Order(contentOrder).Find(&out).Error
	return out, err
}
