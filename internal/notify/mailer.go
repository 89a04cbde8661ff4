// Package notify delivers transactional e-mail: inbox notifications for
// public submissions and password reset links.
//
// ResendMailer talks to the Resend API. LogMailer is used when no API key is
// configured; it writes the message to the log and reports success.
package notify

import (
	"context"
	"errors"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Email is one outgoing message.
type Email struct {
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

// Mailer sends e-mail.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// ErrNoRecipient is returned when an Email has no recipients.
var ErrNoRecipient = errors.New("notify: no recipient")

// emailSender is the slice of the Resend client used here.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendMailer sends through the Resend API.
type ResendMailer struct {
	emails emailSender
	from   string
	logger zerolog.Logger
}

// NewResendMailer returns a mailer for apiKey sending as from.
func NewResendMailer(apiKey, from string) *ResendMailer {
	client := resend.NewClient(apiKey)
	return &ResendMailer{
		emails: client.Emails,
		from:   from,
		logger: log.With().Str("component", "mailer").Logger(),
	}
}

// Send delivers e.
func (m *ResendMailer) Send(ctx context.Context, e Email) error {
	if len(e.To) == 0 {
		return ErrNoRecipient
	}
	resp, err := m.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      e.To,
		Subject: e.Subject,
		Html:    e.HTML,
		ReplyTo: e.ReplyTo,
	})
	if err != nil {
		m.logger.Error().Err(err).Str("subject", e.Subject).Msg("send failed")
		return err
	}
	m.logger.Info().Str("email_id", resp.Id).Str("subject", e.Subject).Msg("email sent")
	return nil
}

// LogMailer logs messages instead of sending them.
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer returns a LogMailer writing to the global logger.
func NewLogMailer() *LogMailer {
	return &LogMailer{logger: log.With().Str("component", "mailer").Logger()}
}

// Send logs e and returns nil.
func (m *LogMailer) Send(_ context.Context, e Email) error {
	if len(e.To) == 0 {
		return ErrNoRecipient
	}
	m.logger.Info().
		Str("to", strings.Join(e.To, ",")).
		Str("subject", e.Subject).
		Int("html_bytes", len(e.HTML)).
		Msg("email (log only, RESEND_API_KEY unset)")
	return nil
}

// New returns a ResendMailer when apiKey is set, otherwise a LogMailer.
func New(apiKey, from string) Mailer {
	if strings.TrimSpace(apiKey) == "" {
		return NewLogMailer()
	}
	return NewResendMailer(apiKey, from)
}
