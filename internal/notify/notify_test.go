package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubSender struct {
	sent []sentMessage
	err  error
}

type sentMessage struct {
	to      string
	subject string
	body    string
	html    bool
}

func (s *stubSender) Send(_ context.Context, to, subject, body string, html bool) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMessage{to: to, subject: subject, body: body, html: html})
	return nil
}

type stubTemplateSource struct {
	templates map[string]string
	err       error
}

func (s *stubTemplateSource) EmailTemplates(_ context.Context, _ []string) (map[string]string, error) {
	return s.templates, s.err
}

func TestInterpolate(t *testing.T) {
	t.Parallel()

	got := Interpolate("Hi {first_name}, welcome to {company_name}!", map[string]string{
		"first_name":   "Jane",
		"company_name": "Acme",
	})
	if got != "Hi Jane, welcome to Acme!" {
		t.Fatalf("unexpected interpolation: %q", got)
	}
}

func TestInterpolateLeavesUnknownPlaceholders(t *testing.T) {
	t.Parallel()

	got := Interpolate("Hi {first_name}", map[string]string{"other": "x"})
	if got != "Hi {first_name}" {
		t.Fatalf("unexpected interpolation: %q", got)
	}
}

func TestSendRendersDefaultTemplate(t *testing.T) {
	t.Parallel()

	sender := &stubSender{}
	mailer := NewMailer(sender, "Acme", zap.NewNop())

	err := mailer.Send(context.Background(), KindInterviewInvite, "jane@example.com", map[string]string{
		"first_name":     "Jane",
		"interview_link": "https://interviews.example.com/interview/tok-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.sent))
	}

	msg := sender.sent[0]
	if msg.subject != "You're Invited - AI Interview with Acme" {
		t.Fatalf("unexpected subject: %q", msg.subject)
	}
	if !msg.html {
		t.Fatal("invite should be html")
	}
	if !strings.Contains(msg.body, "Hi Jane,") {
		t.Fatalf("body not interpolated: %s", msg.body)
	}
	if !strings.Contains(msg.body, "https://interviews.example.com/interview/tok-1") {
		t.Fatalf("interview link missing: %s", msg.body)
	}
}

func TestSendUsesOverrideBody(t *testing.T) {
	t.Parallel()

	sender := &stubSender{}
	mailer := NewMailer(sender, "Acme", zap.NewNop())
	mailer.RefreshTemplates(context.Background(), &stubTemplateSource{
		templates: map[string]string{
			string(KindReminder): "<p>Custom reminder for {first_name}</p>",
		},
	})

	err := mailer.Send(context.Background(), KindReminder, "omar@example.com", map[string]string{
		"first_name": "Omar",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := sender.sent[0].body; got != "<p>Custom reminder for Omar</p>" {
		t.Fatalf("override not applied: %q", got)
	}
}

func TestRefreshTemplatesKeepsDefaultsOnError(t *testing.T) {
	t.Parallel()

	sender := &stubSender{}
	mailer := NewMailer(sender, "Acme", zap.NewNop())
	mailer.RefreshTemplates(context.Background(), &stubTemplateSource{err: errors.New("db down")})

	err := mailer.Send(context.Background(), KindVisaRejection, "x@example.com", map[string]string{
		"full_name": "Xena Y",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(sender.sent[0].body, "Hi Xena Y,") {
		t.Fatalf("default body not used: %s", sender.sent[0].body)
	}
	if sender.sent[0].html {
		t.Fatal("visa rejection should be plain text")
	}
}

func TestSendUnknownKind(t *testing.T) {
	t.Parallel()

	mailer := NewMailer(&stubSender{}, "Acme", zap.NewNop())
	if err := mailer.Send(context.Background(), Kind("bogus"), "x@example.com", nil); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestSendPropagatesTransportError(t *testing.T) {
	t.Parallel()

	mailer := NewMailer(&stubSender{err: errors.New("smtp exploded")}, "Acme", zap.NewNop())
	err := mailer.Send(context.Background(), KindReminder, "x@example.com", nil)
	if err == nil {
		t.Fatal("expected transport error to propagate")
	}
}
