package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-company-site/internal/domain"
	"github.com/tbourn/go-company-site/internal/repo"
)

// ProductInput carries every writable product field.
type ProductInput struct {
	CategoryID  string `json:"category_id" binding:"required"`
	Name        string `json:"name"        binding:"required,max=255"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"   binding:"omitempty,max=2048"`
	CatalogURL  string `json:"catalog_url" binding:"omitempty,max=2048"`
	IsActive    *bool  `json:"is_active"`
}

func (in ProductInput) fields() map[string]any {
	return map[string]any{
		"category_id": strings.TrimSpace(in.CategoryID),
		"name":        strings.TrimSpace(in.Name),
		"description": in.Description,
		"image_url":   strings.TrimSpace(in.ImageURL),
		"catalog_url": strings.TrimSpace(in.CatalogURL),
		"is_active":   boolOr(in.IsActive, true),
	}
}

// ProductPatch is a partial product update.
type ProductPatch struct {
	CategoryID  *string `json:"category_id" binding:"omitempty,min=1"`
	Name        *string `json:"name"        binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"   binding:"omitempty,max=2048"`
	CatalogURL  *string `json:"catalog_url" binding:"omitempty,max=2048"`
	IsActive    *bool   `json:"is_active"`
}

func (p ProductPatch) fields() map[string]any {
	m := map[string]any{}
	setStr(m, "category_id", p.CategoryID)
	setStr(m, "name", p.Name)
	if p.Description != nil {
		m["description"] = *p.Description
	}
	setStr(m, "image_url", p.ImageURL)
	setStr(m, "catalog_url", p.CatalogURL)
	setBool(m, "is_active", p.IsActive)
	return m
}

// ProductService manages products. Every write revalidates the global
// product lists and the per-category list of each category touched.
type ProductService struct {
	DB           *gorm.DB
	Revalidate   Revalidator
	ReorderLimit int
}

const productTracer = "services/ProductService"

// List returns products in display order, optionally limited to one category.
func (s *ProductService) List(ctx context.Context, categoryID string) ([]domain.Product, error) {
	ctx, span := startSpan(ctx, productTracer, "List", attribute.String("category.id", categoryID))
	defer span.End()
	return repo.ListProducts(ctx, s.DB, categoryID, false)
}

// Get returns a single product or ErrNotFound.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return getRecord[domain.Product](ctx, s.DB, id)
}

// Create inserts a product at the end of its category's ordering.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	ctx, span := startSpan(ctx, productTracer, "Create")
	defer span.End()

	catID := strings.TrimSpace(in.CategoryID)
	if err := s.requireCategory(ctx, catID); err != nil {
		return nil, err
	}
	pos, err := repo.NextSortOrder[domain.Product](ctx, s.DB, repo.InCategory(catID))
	if err != nil {
		return nil, err
	}
	p := &domain.Product{
		ID:          uuid.NewString(),
		CategoryID:  catID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		CatalogURL:  strings.TrimSpace(in.CatalogURL),
		IsActive:    boolOr(in.IsActive, true),
		SortOrder:   pos,
	}
	if err := repo.Create(ctx, s.DB, p); err != nil {
		return nil, err
	}
	s.Revalidate.Products(catID)
	return p, nil
}

// Update replaces every writable field of product id.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	return s.update(ctx, "Update", id, in.fields())
}

// Patch updates only the fields set in p.
func (s *ProductService) Patch(ctx context.Context, id string, p ProductPatch) (*domain.Product, error) {
	return s.update(ctx, "Patch", id, p.fields())
}

func (s *ProductService) update(ctx context.Context, op, id string, fields map[string]any) (*domain.Product, error) {
	ctx, span := startSpan(ctx, productTracer, op, attribute.String("product.id", id))
	defer span.End()

	before, err := getRecord[domain.Product](ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if catID, ok := fields["category_id"].(string); ok && catID != before.CategoryID {
		if err := s.requireCategory(ctx, catID); err != nil {
			return nil, err
		}
	}
	p, err := updateRecord[domain.Product](ctx, s.DB, id, fields)
	if err != nil {
		return nil, err
	}
	s.Revalidate.Products(before.CategoryID, p.CategoryID)
	return p, nil
}

// Delete removes product id.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	ctx, span := startSpan(ctx, productTracer, "Delete", attribute.String("product.id", id))
	defer span.End()

	p, err := getRecord[domain.Product](ctx, s.DB, id)
	if err != nil {
		return err
	}
	if err := deleteRecord[domain.Product](ctx, s.DB, id); err != nil {
		return err
	}
	s.Revalidate.Products(p.CategoryID)
	return nil
}

// Reorder positions the products of one category. Ids from another category
// fail as not found; rows already updated keep their new position.
func (s *ProductService) Reorder(ctx context.Context, categoryID string, ids []string) error {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return ErrCategoryRequired
	}
	if err := validateIDs(ids); err != nil {
		return err
	}
	ctx, span := startSpan(ctx, productTracer, "Reorder",
		attribute.String("category.id", categoryID),
		attribute.Int("count", len(ids)),
	)
	defer span.End()

	err := repo.Reorder(ctx, s.DB, "products", ids, reorderLimit(s.ReorderLimit), repo.InCategory(categoryID))
	s.Revalidate.Products(categoryID)
	return err
}

func (s *ProductService) requireCategory(ctx context.Context, id string) error {
	if _, err := repo.Get[domain.Category](ctx, s.DB, id); err != nil {
		if isNotFound(err) {
			return ErrUnknownCategory
		}
		return err
	}
	return nil
}
