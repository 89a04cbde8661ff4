// Package revalidate maps content mutations to cache tags.
//
// Every admin write that changes data shown on public pages calls the
// matching Dispatcher method after the store write succeeds. The dispatcher
// owns the entity → tag table so services never spell tags themselves.
package revalidate

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Tag names shared with the cached read paths.
const (
	TagJobs         = "jobs"
	TagCareers      = "careers"
	TagProducts     = "products"
	TagCategories   = "categories"
	TagTestimonials = "testimonials"
	TagStatistics   = "statistics"
	TagMessages     = "messages"
	TagApplications = "applications"
	TagEnquiries    = "enquiries"
)

// ProductsTag returns the per-category product tag ("products:{id}").
func ProductsTag(categoryID string) string { return TagProducts + ":" + categoryID }

// Invalidator drops cached entries by tag.
type Invalidator interface {
	Invalidate(tags ...string)
}

// Dispatcher issues invalidations for entity kinds. Methods never fail.
type Dispatcher struct {
	inv    Invalidator
	logger zerolog.Logger
}

// New returns a Dispatcher backed by inv.
func New(inv Invalidator) *Dispatcher {
	return &Dispatcher{
		inv:    inv,
		logger: log.With().Str("component", "revalidate").Logger(),
	}
}

func (d *Dispatcher) fire(kind string, tags ...string) {
	d.logger.Debug().Str("kind", kind).Strs("tags", tags).Msg("revalidate")
	d.inv.Invalidate(tags...)
}

// Jobs invalidates job lists and the careers page.
func (d *Dispatcher) Jobs() { d.fire("jobs", TagJobs, TagCareers) }

// Products invalidates product lists, plus the per-category lists of every
// non-empty id.
func (d *Dispatcher) Products(categoryIDs ...string) {
	d.fire("products", productTags(nil, categoryIDs)...)
}

// Categories invalidates category lists and, because product pages embed
// their category, the product lists too.
func (d *Dispatcher) Categories(categoryIDs ...string) {
	d.fire("categories", productTags([]string{TagCategories}, categoryIDs)...)
}

// Testimonials invalidates testimonial lists.
func (d *Dispatcher) Testimonials() { d.fire("testimonials", TagTestimonials) }

// Statistics invalidates statistic lists.
func (d *Dispatcher) Statistics() { d.fire("statistics", TagStatistics) }

// Messages invalidates the contact message inbox.
func (d *Dispatcher) Messages() { d.fire("messages", TagMessages) }

// Applications invalidates the job application inbox.
func (d *Dispatcher) Applications() { d.fire("applications", TagApplications) }

// Enquiries invalidates the product enquiry inbox.
func (d *Dispatcher) Enquiries() { d.fire("enquiries", TagEnquiries) }

func productTags(prefix, categoryIDs []string) []string {
	tags := append(prefix, TagProducts)
	seen := make(map[string]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		tags = append(tags, ProductsTag(id))
	}
	return tags
}
