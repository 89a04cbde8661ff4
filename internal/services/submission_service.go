package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-company-site/internal/domain"
	"github.com/tbourn/go-company-site/internal/notify"
	"github.com/tbourn/go-company-site/internal/repo"
)

// ContactInput is the public contact form.
type ContactInput struct {
	Name    string `json:"name"    binding:"required,max=255"`
	Email   string `json:"email"   binding:"required,email,max=255"`
	Phone   string `json:"phone"   binding:"max=64"`
	Company string `json:"company" binding:"max=255"`
	Subject string `json:"subject" binding:"max=255"`
	Message string `json:"message" binding:"required,max=10000"`
}

// ApplicationInput is a job application. JobID is empty for open
// applications; ResumeURL comes from the resume upload endpoint.
type ApplicationInput struct {
	JobID       string `json:"job_id"       binding:"max=64"`
	Name        string `json:"name"         binding:"required,max=255"`
	Email       string `json:"email"        binding:"required,email,max=255"`
	Phone       string `json:"phone"        binding:"max=64"`
	ResumeURL   string `json:"resume_url"   binding:"required,max=4096"`
	CoverLetter string `json:"cover_letter" binding:"max=10000"`
}

// EnquiryInput is a product information request.
type EnquiryInput struct {
	ProductID string `json:"product_id" binding:"max=64"`
	Name      string `json:"name"       binding:"required,max=255"`
	Email     string `json:"email"      binding:"required,email,max=255"`
	Company   string `json:"company"    binding:"max=255"`
	Message   string `json:"message"    binding:"required,max=10000"`
}

// SubmissionService stores public form submissions and notifies the company
// inbox by e-mail.
//
// Persisting is best-effort: a store failure is logged and the notification
// is still attempted. A submission only fails when neither the store write
// nor the e-mail succeeded.
type SubmissionService struct {
	DB         *gorm.DB
	Mailer     notify.Mailer
	Revalidate Revalidator
	// NotifyTo is the company inbox address.
	NotifyTo string
}

const submissionTracer = "services/SubmissionService"

func submissionLogger() zerolog.Logger {
	return log.With().Str("component", "submissions").Logger()
}

// Contact records a contact form submission.
func (s *SubmissionService) Contact(ctx context.Context, in ContactInput) error {
	ctx, span := startSpan(ctx, submissionTracer, "Contact")
	defer span.End()

	msg := &domain.ContactMessage{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Company: strings.TrimSpace(in.Company),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}
	saveErr := s.save(ctx, "contact", msg.ID, msg, s.Revalidate.Messages)

	subject := "New contact message"
	if msg.Subject != "" {
		subject += ": " + msg.Subject
	}
	mailErr := s.mail(ctx, subject, msg.Email, []notify.Field{
		{Label: "Name", Value: msg.Name},
		{Label: "Email", Value: msg.Email},
		{Label: "Phone", Value: msg.Phone},
		{Label: "Company", Value: msg.Company},
	}, msg.Message)
	return outcome(saveErr, mailErr)
}

// Apply records a job application.
func (s *SubmissionService) Apply(ctx context.Context, in ApplicationInput) error {
	ctx, span := startSpan(ctx, submissionTracer, "Apply")
	defer span.End()

	app := &domain.Application{
		ID:          uuid.NewString(),
		JobID:       optionalID(in.JobID),
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		Phone:       strings.TrimSpace(in.Phone),
		ResumeURL:   strings.TrimSpace(in.ResumeURL),
		CoverLetter: strings.TrimSpace(in.CoverLetter),
	}
	saveErr := s.save(ctx, "application", app.ID, app, s.Revalidate.Applications)

	position := "Open application"
	if app.JobID != nil {
		if job, err := repo.Get[domain.Job](ctx, s.DB, *app.JobID); err == nil {
			position = job.Title
		}
	}
	mailErr := s.mail(ctx, "New application: "+position, app.Email, []notify.Field{
		{Label: "Position", Value: position},
		{Label: "Name", Value: app.Name},
		{Label: "Email", Value: app.Email},
		{Label: "Phone", Value: app.Phone},
		{Label: "Resume", Value: app.ResumeURL},
	}, app.CoverLetter)
	return outcome(saveErr, mailErr)
}

// Enquire records a product enquiry.
func (s *SubmissionService) Enquire(ctx context.Context, in EnquiryInput) error {
	ctx, span := startSpan(ctx, submissionTracer, "Enquire")
	defer span.End()

	enq := &domain.ProductEnquiry{
		ID:        uuid.NewString(),
		ProductID: optionalID(in.ProductID),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Company:   strings.TrimSpace(in.Company),
		Message:   strings.TrimSpace(in.Message),
	}
	saveErr := s.save(ctx, "enquiry", enq.ID, enq, s.Revalidate.Enquiries)

	product := "General enquiry"
	if enq.ProductID != nil {
		if p, err := repo.Get[domain.Product](ctx, s.DB, *enq.ProductID); err == nil {
			product = p.Name
		}
	}
	mailErr := s.mail(ctx, "Product enquiry: "+product, enq.Email, []notify.Field{
		{Label: "Product", Value: product},
		{Label: "Name", Value: enq.Name},
		{Label: "Email", Value: enq.Email},
		{Label: "Company", Value: enq.Company},
	}, enq.Message)
	return outcome(saveErr, mailErr)
}

func (s *SubmissionService) save(ctx context.Context, kind, id string, rec any, revalidate func()) error {
	if err := s.DB.WithContext(ctx).Create(rec).Error; err != nil {
		l := submissionLogger()
		l.Error().Err(err).Str("kind", kind).Str("id", id).Msg("store submission failed")
		return err
	}
	revalidate()
	return nil
}

func (s *SubmissionService) mail(ctx context.Context, subject, replyTo string, fields []notify.Field, body string) error {
	html, err := notify.SubmissionHTML(subject, fields, body)
	if err != nil {
		return err
	}
	err = s.Mailer.Send(ctx, notify.Email{
		To:      []string{s.NotifyTo},
		Subject: subject,
		HTML:    html,
		ReplyTo: replyTo,
	})
	if err != nil {
		l := submissionLogger()
		l.Warn().Err(err).Str("subject", subject).Msg("submission e-mail failed")
	}
	return err
}

// outcome fails only when nothing reached the company.
func outcome(saveErr, mailErr error) error {
	if saveErr != nil && mailErr != nil {
		return errors.Join(saveErr, mailErr)
	}
	return nil
}

func optionalID(id string) *string {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return &id
}
