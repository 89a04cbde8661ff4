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

// TestimonialInput carries every writable testimonial field.
type TestimonialInput struct {
	Author   string `json:"author"    binding:"required,max=255"`
	Role     string `json:"role"      binding:"max=255"`
	Company  string `json:"company"   binding:"max=255"`
	Quote    string `json:"quote"     binding:"required"`
	IsActive *bool  `json:"is_active"`
}

func (in TestimonialInput) fields() map[string]any {
	return map[string]any{
		"author":    strings.TrimSpace(in.Author),
		"role":      strings.TrimSpace(in.Role),
		"company":   strings.TrimSpace(in.Company),
		"quote":     strings.TrimSpace(in.Quote),
		"is_active": boolOr(in.IsActive, true),
	}
}

// TestimonialPatch is a partial testimonial update.
type TestimonialPatch struct {
	Author   *string `json:"author"    binding:"omitempty,min=1,max=255"`
	Role     *string `json:"role"      binding:"omitempty,max=255"`
	Company  *string `json:"company"   binding:"omitempty,max=255"`
	Quote    *string `json:"quote"     binding:"omitempty,min=1"`
	IsActive *bool   `json:"is_active"`
}

func (p TestimonialPatch) fields() map[string]any {
	m := map[string]any{}
	setStr(m, "author", p.Author)
	setStr(m, "role", p.Role)
	setStr(m, "company", p.Company)
	setStr(m, "quote", p.Quote)
	setBool(m, "is_active", p.IsActive)
	return m
}

// TestimonialService manages the home page testimonials.
type TestimonialService struct {
	DB           *gorm.DB
	Revalidate   Revalidator
	ReorderLimit int
}

const testimonialTracer = "services/TestimonialService"

// List returns all testimonials in display order.
func (s *TestimonialService) List(ctx context.Context) ([]domain.Testimonial, error) {
	ctx, span := startSpan(ctx, testimonialTracer, "List")
	defer span.End()
	return repo.ListTestimonials(ctx, s.DB, false)
}

// Get returns a single testimonial or ErrNotFound.
func (s *TestimonialService) Get(ctx context.Context, id string) (*domain.Testimonial, error) {
	return getRecord[domain.Testimonial](ctx, s.DB, id)
}

// Create inserts a testimonial at the end of the ordering.
func (s *TestimonialService) Create(ctx context.Context, in TestimonialInput) (*domain.Testimonial, error) {
	ctx, span := startSpan(ctx, testimonialTracer, "Create")
	defer span.End()

	pos, err := repo.NextSortOrder[domain.Testimonial](ctx, s.DB)
	if err != nil {
		return nil, err
	}
	t := &domain.Testimonial{
		ID:        uuid.NewString(),
		Author:    strings.TrimSpace(in.Author),
		Role:      strings.TrimSpace(in.Role),
		Company:   strings.TrimSpace(in.Company),
		Quote:     strings.TrimSpace(in.Quote),
		IsActive:  boolOr(in.IsActive, true),
		SortOrder: pos,
	}
	if err := repo.Create(ctx, s.DB, t); err != nil {
		return nil, err
	}
	s.Revalidate.Testimonials()
	return t, nil
}

// Update replaces every writable field of testimonial id.
func (s *TestimonialService) Update(ctx context.Context, id string, in TestimonialInput) (*domain.Testimonial, error) {
	return s.update(ctx, "Update", id, in.fields())
}

// Patch updates only the fields set in p.
func (s *TestimonialService) Patch(ctx context.Context, id string, p TestimonialPatch) (*domain.Testimonial, error) {
	return s.update(ctx, "Patch", id, p.fields())
}

func (s *TestimonialService) update(ctx context.Context, op, id string, fields map[string]any) (*domain.Testimonial, error) {
	ctx, span := startSpan(ctx, testimonialTracer, op, attribute.String("testimonial.id", id))
	defer span.End()

	t, err := updateRecord[domain.Testimonial](ctx, s.DB, id, fields)
	if err != nil {
		return nil, err
	}
	s.Revalidate.Testimonials()
	return t, nil
}

// Delete removes testimonial id.
func (s *TestimonialService) Delete(ctx context.Context, id string) error {
	ctx, span := startSpan(ctx, testimonialTracer, "Delete", attribute.String("testimonial.id", id))
	defer span.End()

	if err := deleteRecord[domain.Testimonial](ctx, s.DB, id); err != nil {
		return err
	}
	s.Revalidate.Testimonials()
	return nil
}

// Reorder sets sort_order to each id's position (no rollback on failure).
func (s *TestimonialService) Reorder(ctx context.Context, ids []string) error {
	if err := validateIDs(ids); err != nil {
		return err
	}
	ctx, span := startSpan(ctx, testimonialTracer, "Reorder", attribute.Int("count", len(ids)))
	defer span.End()

	err := repo.Reorder(ctx, s.DB, "testimonials", ids, reorderLimit(s.ReorderLimit), nil)
	s.Revalidate.Testimonials()
	return err
}
