package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/go-company-site/internal/cache"
	"github.com/tbourn/go-company-site/internal/domain"
	"github.com/tbourn/go-company-site/internal/repo"
	"github.com/tbourn/go-company-site/internal/revalidate"
)

// ContentReader serves the public pages. Every read goes through the tagged
// cache and only returns active rows; admin writes invalidate the tags via
// the revalidation dispatcher.
type ContentReader struct {
	DB    *gorm.DB
	Cache *cache.Store

	// ShowTestimonials hides testimonials from the home page when false.
	ShowTestimonials bool
}

// HomeContent is everything the home page renders.
type HomeContent struct {
	Statistics   []domain.Statistic
	Testimonials []domain.Testimonial
	Categories   []domain.Category
}

// CategoryPage is a category with its active products.
type CategoryPage struct {
	Category *domain.Category
	Products []domain.Product
}

const readerTracer = "services/ContentReader"

var (
	careersTags  = []string{revalidate.TagJobs, revalidate.TagCareers}
	categoryTags = []string{revalidate.TagCategories}
)

// Careers returns active jobs in display order.
func (r *ContentReader) Careers(ctx context.Context) ([]domain.Job, error) {
	ctx, span := startSpan(ctx, readerTracer, "Careers")
	defer span.End()
	return cache.Cached(r.Cache, "public.jobs", careersTags,
		func(ctx context.Context) ([]domain.Job, error) {
			return repo.ListJobs(ctx, r.DB, true)
		})(ctx)
}

// Job returns an active job, or ErrNotFound for missing and inactive ones.
func (r *ContentReader) Job(ctx context.Context, id string) (*domain.Job, error) {
	ctx, span := startSpan(ctx, readerTracer, "Job", attribute.String("job.id", id))
	defer span.End()
	return cache.Cached(r.Cache, "public.job|"+id, careersTags,
		func(ctx context.Context) (*domain.Job, error) {
			j, err := getRecord[domain.Job](ctx, r.DB, id)
			if err != nil {
				return nil, err
			}
			if !j.IsActive {
				return nil, ErrNotFound
			}
			return j, nil
		})(ctx)
}

// Categories returns active categories in display order.
func (r *ContentReader) Categories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := startSpan(ctx, readerTracer, "Categories")
	defer span.End()
	return cache.Cached(r.Cache, "public.categories", categoryTags,
		func(ctx context.Context) ([]domain.Category, error) {
			return repo.ListCategories(ctx, r.DB, true)
		})(ctx)
}

// Category returns the active category at route with its active products.
func (r *ContentReader) Category(ctx context.Context, route string) (*CategoryPage, error) {
	ctx, span := startSpan(ctx, readerTracer, "Category", attribute.String("category.route", route))
	defer span.End()

	cat, err := cache.Cached(r.Cache, "public.category|"+route, categoryTags,
		func(ctx context.Context) (*domain.Category, error) {
			c, err := repo.GetCategoryByRoute(ctx, r.DB, route)
			if err != nil {
				return nil, mapNotFound(err)
			}
			if !c.IsActive {
				return nil, ErrNotFound
			}
			return c, nil
		})(ctx)
	if err != nil {
		return nil, err
	}
	products, err := r.Products(ctx, cat.ID)
	if err != nil {
		return nil, err
	}
	return &CategoryPage{Category: cat, Products: products}, nil
}

// Products returns the active products of one category, or of all
// categories when categoryID is empty.
func (r *ContentReader) Products(ctx context.Context, categoryID string) ([]domain.Product, error) {
	tags := []string{revalidate.TagProducts}
	if categoryID != "" {
		tags = append(tags, revalidate.ProductsTag(categoryID))
	}
	return cache.Cached(r.Cache, "public.products|"+categoryID, tags,
		func(ctx context.Context) ([]domain.Product, error) {
			return repo.ListProducts(ctx, r.DB, categoryID, true)
		})(ctx)
}

// Testimonials returns active testimonials, or none when the feature is off.
func (r *ContentReader) Testimonials(ctx context.Context) ([]domain.Testimonial, error) {
	if !r.ShowTestimonials {
		return nil, nil
	}
	return cache.Cached(r.Cache, "public.testimonials", []string{revalidate.TagTestimonials},
		func(ctx context.Context) ([]domain.Testimonial, error) {
			return repo.ListTestimonials(ctx, r.DB, true)
		})(ctx)
}

// Statistics returns the home page figures.
func (r *ContentReader) Statistics(ctx context.Context) ([]domain.Statistic, error) {
	return cache.Cached(r.Cache, "public.statistics", []string{revalidate.TagStatistics},
		func(ctx context.Context) ([]domain.Statistic, error) {
			return repo.ListStatistics(ctx, r.DB)
		})(ctx)
}

// Home loads the home page sections concurrently.
func (r *ContentReader) Home(ctx context.Context) (*HomeContent, error) {
	ctx, span := startSpan(ctx, readerTracer, "Home")
	defer span.End()

	var out HomeContent
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Statistics, err = r.Statistics(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Testimonials, err = r.Testimonials(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Categories, err = r.Categories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
