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

// InboxCounts is the number of unread submissions per inbox.
type InboxCounts struct {
	Messages     int64 `json:"messages"`
	Applications int64 `json:"applications"`
	Enquiries    int64 `json:"enquiries"`
}

// InboxService serves the admin inbox of public submissions. Lists are
// cached under the inbox tags and revalidated by every write, including new
// submissions.
type InboxService struct {
	DB         *gorm.DB
	Cache      *cache.Store
	Revalidate Revalidator
}

const inboxTracer = "services/InboxService"

// Messages returns contact messages, newest first.
func (s *InboxService) Messages(ctx context.Context) ([]domain.ContactMessage, error) {
	ctx, span := startSpan(ctx, inboxTracer, "Messages")
	defer span.End()
	return cache.Cached(s.Cache, "inbox.messages", []string{revalidate.TagMessages},
		func(ctx context.Context) ([]domain.ContactMessage, error) {
			return repo.ListContactMessages(ctx, s.DB)
		})(ctx)
}

// Applications returns job applications, newest first.
func (s *InboxService) Applications(ctx context.Context) ([]domain.Application, error) {
	ctx, span := startSpan(ctx, inboxTracer, "Applications")
	defer span.End()
	return cache.Cached(s.Cache, "inbox.applications", []string{revalidate.TagApplications},
		func(ctx context.Context) ([]domain.Application, error) {
			return repo.ListApplications(ctx, s.DB)
		})(ctx)
}

// Enquiries returns product enquiries, newest first.
func (s *InboxService) Enquiries(ctx context.Context) ([]domain.ProductEnquiry, error) {
	ctx, span := startSpan(ctx, inboxTracer, "Enquiries")
	defer span.End()
	return cache.Cached(s.Cache, "inbox.enquiries", []string{revalidate.TagEnquiries},
		func(ctx context.Context) ([]domain.ProductEnquiry, error) {
			return repo.ListEnquiries(ctx, s.DB)
		})(ctx)
}

// Unread counts unread rows in every inbox.
func (s *InboxService) Unread(ctx context.Context) (InboxCounts, error) {
	ctx, span := startSpan(ctx, inboxTracer, "Unread")
	defer span.End()

	var out InboxCounts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Messages, err = repo.CountUnread[domain.ContactMessage](gctx, s.DB)
		return err
	})
	g.Go(func() (err error) {
		out.Applications, err = repo.CountUnread[domain.Application](gctx, s.DB)
		return err
	})
	g.Go(func() (err error) {
		out.Enquiries, err = repo.CountUnread[domain.ProductEnquiry](gctx, s.DB)
		return err
	})
	if err := g.Wait(); err != nil {
		return InboxCounts{}, err
	}
	return out, nil
}

// MarkMessageRead flags contact message id as read.
func (s *InboxService) MarkMessageRead(ctx context.Context, id string) error {
	return s.apply(ctx, "MarkMessageRead", id, markRead[domain.ContactMessage], s.Revalidate.Messages)
}

// DeleteMessage removes contact message id.
func (s *InboxService) DeleteMessage(ctx context.Context, id string) error {
	return s.apply(ctx, "DeleteMessage", id, deleteRecord[domain.ContactMessage], s.Revalidate.Messages)
}

// MarkApplicationRead flags application id as read.
func (s *InboxService) MarkApplicationRead(ctx context.Context, id string) error {
	return s.apply(ctx, "MarkApplicationRead", id, markRead[domain.Application], s.Revalidate.Applications)
}

// DeleteApplication removes application id.
func (s *InboxService) DeleteApplication(ctx context.Context, id string) error {
	return s.apply(ctx, "DeleteApplication", id, deleteRecord[domain.Application], s.Revalidate.Applications)
}

// MarkEnquiryRead flags product enquiry id as read.
func (s *InboxService) MarkEnquiryRead(ctx context.Context, id string) error {
	return s.apply(ctx, "MarkEnquiryRead", id, markRead[domain.ProductEnquiry], s.Revalidate.Enquiries)
}

// DeleteEnquiry removes product enquiry id.
func (s *InboxService) DeleteEnquiry(ctx context.Context, id string) error {
	return s.apply(ctx, "DeleteEnquiry", id, deleteRecord[domain.ProductEnquiry], s.Revalidate.Enquiries)
}

// apply runs a single-row write and revalidates on success.
func (s *InboxService) apply(ctx context.Context, op, id string, write func(context.Context, *gorm.DB, string) error, after func()) error {
	ctx, span := startSpan(ctx, inboxTracer, op, attribute.String("submission.id", id))
	defer span.End()

	if err := write(ctx, s.DB, id); err != nil {
		return err
	}
	after()
	return nil
}

func markRead[T any](ctx context.Context, db *gorm.DB, id string) error {
	return mapNotFound(repo.UpdateFields[T](ctx, db, id, map[string]any{"is_read": true}))
}
