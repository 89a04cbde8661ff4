package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

type fakeSender struct {
	got *resend.SendEmailRequest
	err error
}

func (f *fakeSender) SendWithContext(_ context.Context, p *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.got = p
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "em_1"}, nil
}

func TestResendMailer_MapsRequest(t *testing.T) {
	fs := &fakeSender{}
	m := &ResendMailer{emails: fs, from: "site@example.com", logger: zerolog.Nop()}

	err := m.Send(context.Background(), Email{To: []string{"inbox@example.com"}, Subject: "Hi", HTML: "<p>x</p>", ReplyTo: "v@example.com"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if fs.got.From != "site@example.com" || fs.got.To[0] != "inbox@example.com" || fs.got.ReplyTo != "v@example.com" || fs.got.Html != "<p>x</p>" {
		t.Fatalf("unexpected request: %+v", fs.got)
	}
}

func TestResendMailer_Errors(t *testing.T) {
	boom := errors.New("api down")
	m := &ResendMailer{emails: &fakeSender{err: boom}, from: "a@b.c", logger: zerolog.Nop()}
	if err := m.Send(context.Background(), Email{To: []string{"x@y.z"}}); !errors.Is(err, boom) {
		t.Fatalf("expected api error, got %v", err)
	}
	if err := m.Send(context.Background(), Email{}); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("expected ErrNoRecipient, got %v", err)
	}
}

func TestNew_SelectsImplementation(t *testing.T) {
	if _, ok := New("", "a@b.c").(*LogMailer); !ok {
		t.Fatalf("empty key must yield LogMailer")
	}
	if _, ok := New("re_123", "a@b.c").(*ResendMailer); !ok {
		t.Fatalf("key must yield ResendMailer")
	}
	if err := NewLogMailer().Send(context.Background(), Email{To: []string{"x@y.z"}, Subject: "s"}); err != nil {
		t.Fatalf("LogMailer.Send: %v", err)
	}
}

func TestSubmissionHTML_Escapes(t *testing.T) {
	html, err := SubmissionHTML("New message", []Field{{"Name", "<script>x</script>"}}, "line1\nline2")
	if err != nil {
		t.Fatalf("SubmissionHTML: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("value not escaped: %s", html)
	}
	if !strings.Contains(html, "New message") || !strings.Contains(html, "line1\nline2") {
		t.Fatalf("missing content: %s", html)
	}
	reset, err := ResetHTML("https://example.com/admin/reset-password?token=abc")
	if err != nil || !strings.Contains(reset, "token=abc") {
		t.Fatalf("ResetHTML: %q %v", reset, err)
	}
}
