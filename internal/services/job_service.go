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

// JobInput carries every writable job field (create and full update).
// A nil IsActive means active.
type JobInput struct {
	Title          string `json:"title"           binding:"required,max=255"`
	Location       string `json:"location"        binding:"max=255"`
	EmploymentType string `json:"employment_type" binding:"max=64"`
	Department     string `json:"department"      binding:"max=128"`
	Description    string `json:"description"`
	Requirements   string `json:"requirements"`
	IsActive       *bool  `json:"is_active"`
}

func (in JobInput) fields() map[string]any {
	return map[string]any{
		"title":           strings.TrimSpace(in.Title),
		"location":        strings.TrimSpace(in.Location),
		"employment_type": strings.TrimSpace(in.EmploymentType),
		"department":      strings.TrimSpace(in.Department),
		"description":     in.Description,
		"requirements":    in.Requirements,
		"is_active":       boolOr(in.IsActive, true),
	}
}

// JobPatch is a partial job update; nil fields are left untouched.
type JobPatch struct {
	Title          *string `json:"title"           binding:"omitempty,min=1,max=255"`
	Location       *string `json:"location"        binding:"omitempty,max=255"`
	EmploymentType *string `json:"employment_type" binding:"omitempty,max=64"`
	Department     *string `json:"department"      binding:"omitempty,max=128"`
	Description    *string `json:"description"`
	Requirements   *string `json:"requirements"`
	IsActive       *bool   `json:"is_active"`
}

func (p JobPatch) fields() map[string]any {
	m := map[string]any{}
	setStr(m, "title", p.Title)
	setStr(m, "location", p.Location)
	setStr(m, "employment_type", p.EmploymentType)
	setStr(m, "department", p.Department)
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Requirements != nil {
		m["requirements"] = *p.Requirements
	}
	setBool(m, "is_active", p.IsActive)
	return m
}

// JobService manages job postings shown on the careers pages.
type JobService struct {
	DB           *gorm.DB
	Revalidate   Revalidator
	ReorderLimit int
}

const jobTracer = "services/JobService"

// List returns all jobs, inactive included, in display order.
func (s *JobService) List(ctx context.Context) ([]domain.Job, error) {
	ctx, span := startSpan(ctx, jobTracer, "List")
	defer span.End()
	return repo.ListJobs(ctx, s.DB, false)
}

// Get returns a single job or ErrNotFound.
func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	return getRecord[domain.Job](ctx, s.DB, id)
}

// Create inserts a job at the end of the ordering.
func (s *JobService) Create(ctx context.Context, in JobInput) (*domain.Job, error) {
	ctx, span := startSpan(ctx, jobTracer, "Create")
	defer span.End()

	pos, err := repo.NextSortOrder[domain.Job](ctx, s.DB)
	if err != nil {
		return nil, err
	}
	job := &domain.Job{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(in.Title),
		Location:       strings.TrimSpace(in.Location),
		EmploymentType: strings.TrimSpace(in.EmploymentType),
		Department:     strings.TrimSpace(in.Department),
		Description:    in.Description,
		Requirements:   in.Requirements,
		IsActive:       boolOr(in.IsActive, true),
		SortOrder:      pos,
	}
	if err := repo.Create(ctx, s.DB, job); err != nil {
		return nil, err
	}
	s.Revalidate.Jobs()
	return job, nil
}

// Update replaces every writable field of job id.
func (s *JobService) Update(ctx context.Context, id string, in JobInput) (*domain.Job, error) {
	ctx, span := startSpan(ctx, jobTracer, "Update", attribute.String("job.id", id))
	defer span.End()

	job, err := updateRecord[domain.Job](ctx, s.DB, id, in.fields())
	if err != nil {
		return nil, err
	}
	s.Revalidate.Jobs()
	return job, nil
}

// Patch updates only the fields set in p.
func (s *JobService) Patch(ctx context.Context, id string, p JobPatch) (*domain.Job, error) {
	ctx, span := startSpan(ctx, jobTracer, "Patch", attribute.String("job.id", id))
	defer span.End()

	job, err := updateRecord[domain.Job](ctx, s.DB, id, p.fields())
	if err != nil {
		return nil, err
	}
	s.Revalidate.Jobs()
	return job, nil
}

// Delete removes job id.
func (s *JobService) Delete(ctx context.Context, id string) error {
	ctx, span := startSpan(ctx, jobTracer, "Delete", attribute.String("job.id", id))
	defer span.End()

	if err := deleteRecord[domain.Job](ctx, s.DB, id); err != nil {
		return err
	}
	s.Revalidate.Jobs()
	return nil
}

// Reorder sets sort_order to each id's position. Rows updated before a
// failure keep their new position and the caches are revalidated either way.
func (s *JobService) Reorder(ctx context.Context, ids []string) error {
	if err := validateIDs(ids); err != nil {
		return err
	}
	ctx, span := startSpan(ctx, jobTracer, "Reorder", attribute.Int("count", len(ids)))
	defer span.End()

	err := repo.Reorder(ctx, s.DB, "jobs", ids, reorderLimit(s.ReorderLimit), nil)
	s.Revalidate.Jobs()
	return err
}
