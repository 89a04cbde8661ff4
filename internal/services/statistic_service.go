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

// StatisticInput carries every writable statistic field.
type StatisticInput struct {
	Label  string `json:"label"  binding:"required,max=255"`
	Value  string `json:"value"  binding:"required,max=64"`
	Suffix string `json:"suffix" binding:"max=16"`
}

func (in StatisticInput) fields() map[string]any {
	return map[string]any{
		"label":  strings.TrimSpace(in.Label),
		"value":  strings.TrimSpace(in.Value),
		"suffix": strings.TrimSpace(in.Suffix),
	}
}

// StatisticPatch is a partial statistic update.
type StatisticPatch struct {
	Label  *string `json:"label"  binding:"omitempty,min=1,max=255"`
	Value  *string `json:"value"  binding:"omitempty,min=1,max=64"`
	Suffix *string `json:"suffix" binding:"omitempty,max=16"`
}

func (p StatisticPatch) fields() map[string]any {
	m := map[string]any{}
	setStr(m, "label", p.Label)
	setStr(m, "value", p.Value)
	setStr(m, "suffix", p.Suffix)
	return m
}

// StatisticService manages the headline figures on the home page.
type StatisticService struct {
	DB           *gorm.DB
	Revalidate   Revalidator
	ReorderLimit int
}

const statisticTracer = "services/StatisticService"

// List returns all statistics in display order.
func (s *StatisticService) List(ctx context.Context) ([]domain.Statistic, error) {
	ctx, span := startSpan(ctx, statisticTracer, "List")
	defer span.End()
	return repo.ListStatistics(ctx, s.DB)
}

// Get returns a single statistic or ErrNotFound.
func (s *StatisticService) Get(ctx context.Context, id string) (*domain.Statistic, error) {
	return getRecord[domain.Statistic](ctx, s.DB, id)
}

// Create inserts a statistic at the end of the ordering.
func (s *StatisticService) Create(ctx context.Context, in StatisticInput) (*domain.Statistic, error) {
	ctx, span := startSpan(ctx, statisticTracer, "Create")
	defer span.End()

	pos, err := repo.NextSortOrder[domain.Statistic](ctx, s.DB)
	if err != nil {
		return nil, err
	}
	st := &domain.Statistic{
		ID:        uuid.NewString(),
		Label:     strings.TrimSpace(in.Label),
		Value:     strings.TrimSpace(in.Value),
		Suffix:    strings.TrimSpace(in.Suffix),
		SortOrder: pos,
	}
	if err := repo.Create(ctx, s.DB, st); err != nil {
		return nil, err
	}
	s.Revalidate.Statistics()
	return st, nil
}

// Update replaces every writable field of statistic id.
func (s *StatisticService) Update(ctx context.Context, id string, in StatisticInput) (*domain.Statistic, error) {
	return s.update(ctx, "Update", id, in.fields())
}

// Patch updates only the fields set in p.
func (s *StatisticService) Patch(ctx context.Context, id string, p StatisticPatch) (*domain.Statistic, error) {
	return s.update(ctx, "Patch", id, p.fields())
}

func (s *StatisticService) update(ctx context.Context, op, id string, fields map[string]any) (*domain.Statistic, error) {
	ctx, span := startSpan(ctx, statisticTracer, op, attribute.String("statistic.id", id))
	defer span.End()

	st, err := updateRecord[domain.Statistic](ctx, s.DB, id, fields)
	if err != nil {
		return nil, err
	}
	s.Revalidate.Statistics()
	return st, nil
}

// Delete removes statistic id.
func (s *StatisticService) Delete(ctx context.Context, id string) error {
	ctx, span := startSpan(ctx, statisticTracer, "Delete", attribute.String("statistic.id", id))
	defer span.End()

	if err := deleteRecord[domain.Statistic](ctx, s.DB, id); err != nil {
		return err
	}
	s.Revalidate.Statistics()
	return nil
}

// Reorder sets sort_order to each id's position (no rollback on failure).
func (s *StatisticService) Reorder(ctx context.Context, ids []string) error {
	if err := validateIDs(ids); err != nil {
		return err
	}
	ctx, span := startSpan(ctx, statisticTracer, "Reorder", attribute.Int("count", len(ids)))
	defer span.End()

	err := repo.Reorder(ctx, s.DB, "statistics", ids, reorderLimit(s.ReorderLimit), nil)
	s.Revalidate.Statistics()
	return err
}
