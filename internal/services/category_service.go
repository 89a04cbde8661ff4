package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-company-site/internal/domain"
	"github.com/tbourn/go-company-site/internal/repo"
)

var routeRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CategoryInput carries every writable category field.
type CategoryInput struct {
	Title       string `json:"title"       binding:"required,max=255"`
	Route       string `json:"route"       binding:"required,max=128"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"   binding:"omitempty,max=2048"`
	IsActive    *bool  `json:"is_active"`
}

func (in CategoryInput) fields() map[string]any {
	return map[string]any{
		"title":       strings.TrimSpace(in.Title),
		"route":       normalizeRoute(in.Route),
		"description": in.Description,
		"image_url":   strings.TrimSpace(in.ImageURL),
		"is_active":   boolOr(in.IsActive, true),
	}
}

// CategoryPatch is a partial category update.
type CategoryPatch struct {
	Title       *string `json:"title"       binding:"omitempty,min=1,max=255"`
	Route       *string `json:"route"       binding:"omitempty,min=1,max=128"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"   binding:"omitempty,max=2048"`
	IsActive    *bool   `json:"is_active"`
}

func (p CategoryPatch) fields() map[string]any {
	m := map[string]any{}
	setStr(m, "title", p.Title)
	if p.Route != nil {
		m["route"] = normalizeRoute(*p.Route)
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	setStr(m, "image_url", p.ImageURL)
	setBool(m, "is_active", p.IsActive)
	return m
}

func normalizeRoute(r string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(r)), "/")
}

func checkRoute(fields map[string]any) error {
	r, ok := fields["route"]
	if !ok {
		return nil
	}
	if !routeRe.MatchString(r.(string)) {
		return ErrInvalidRoute
	}
	return nil
}

// CategoryService manages product categories.
type CategoryService struct {
	DB           *gorm.DB
	Revalidate   Revalidator
	ReorderLimit int
}

const categoryTracer = "services/CategoryService"

// List returns all categories in display order.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	ctx, span := startSpan(ctx, categoryTracer, "List")
	defer span.End()
	return repo.ListCategories(ctx, s.DB, false)
}

// Get returns a single category or ErrNotFound.
func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	return getRecord[domain.Category](ctx, s.DB, id)
}

// Create inserts a category at the end of the ordering. Routes are unique.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	ctx, span := startSpan(ctx, categoryTracer, "Create")
	defer span.End()

	f := in.fields()
	if err := checkRoute(f); err != nil {
		return nil, err
	}
	pos, err := repo.NextSortOrder[domain.Category](ctx, s.DB)
	if err != nil {
		return nil, err
	}
	cat := &domain.Category{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Route:       normalizeRoute(in.Route),
		Description: in.Description,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		IsActive:    boolOr(in.IsActive, true),
		SortOrder:   pos,
	}
	if err := repo.Create(ctx, s.DB, cat); err != nil {
		return nil, mapRouteConflict(err)
	}
	s.Revalidate.Categories(cat.ID)
	return cat, nil
}

// Update replaces every writable field of category id.
func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (*domain.Category, error) {
	return s.update(ctx, "Update", id, in.fields())
}

// Patch updates only the fields set in p.
func (s *CategoryService) Patch(ctx context.Context, id string, p CategoryPatch) (*domain.Category, error) {
	return s.update(ctx, "Patch", id, p.fields())
}

func (s *CategoryService) update(ctx context.Context, op, id string, fields map[string]any) (*domain.Category, error) {
	ctx, span := startSpan(ctx, categoryTracer, op, attribute.String("category.id", id))
	defer span.End()

	if err := checkRoute(fields); err != nil {
		return nil, err
	}
	cat, err := updateRecord[domain.Category](ctx, s.DB, id, fields)
	if err != nil {
		return nil, mapRouteConflict(err)
	}
	s.Revalidate.Categories(id)
	return cat, nil
}

// Delete removes category id. It is refused with *CategoryInUseError while
// any product still references the category.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	ctx, span := startSpan(ctx, categoryTracer, "Delete", attribute.String("category.id", id))
	defer span.End()

	n, err := repo.CountProductsInCategory(ctx, s.DB, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &CategoryInUseError{Products: n}
	}
	if err := deleteRecord[domain.Category](ctx, s.DB, id); err != nil {
		return err
	}
	s.Revalidate.Categories(id)
	return nil
}

// Reorder sets sort_order to each id's position (no rollback on failure).
func (s *CategoryService) Reorder(ctx context.Context, ids []string) error {
	if err := validateIDs(ids); err != nil {
		return err
	}
	ctx, span := startSpan(ctx, categoryTracer, "Reorder", attribute.Int("count", len(ids)))
	defer span.End()

	err := repo.Reorder(ctx, s.DB, "categories", ids, reorderLimit(s.ReorderLimit), nil)
	s.Revalidate.Categories()
	return err
}

func mapRouteConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
		return ErrRouteTaken
	}
	return err
}
