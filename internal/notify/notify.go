package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Kind names one outbound message template. The values double as row names in
// the prompts table, where operators can override the built-in bodies.
type Kind string

const (
	KindEligibilityForm Kind = "email_dubai_form"
	KindInterviewInvite Kind = "email_round1_invite"
	KindRound2Invite    Kind = "email_round2_invite"
	KindReminder        Kind = "email_reminder"
	KindVisaApproval    Kind = "visa_approval"
	KindVisaRejection   Kind = "visa_rejection"
)

// Notifier delivers one templated message. At-most-once per (candidate, kind)
// is guaranteed by pipeline status and timestamp guards, never here.
type Notifier interface {
	Send(ctx context.Context, kind Kind, to string, vars map[string]string) error
}

// Sender is the mail transport.
type Sender interface {
	Send(ctx context.Context, to, subject, body string, html bool) error
}

// TemplateSource supplies template body overrides, keyed by template name.
type TemplateSource interface {
	EmailTemplates(ctx context.Context, names []string) (map[string]string, error)
}

// overridableKinds are fetched from the template store each refresh. Visa
// outcome emails are short plain-text notes and stay built-in.
var overridableKinds = []Kind{
	KindEligibilityForm,
	KindInterviewInvite,
	KindRound2Invite,
	KindReminder,
}

// Mailer renders templates and hands them to the transport.
type Mailer struct {
	sender    Sender
	company   string
	logger    *zap.Logger
	overrides map[Kind]string
}

func NewMailer(sender Sender, company string, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{
		sender:    sender,
		company:   company,
		logger:    logger,
		overrides: make(map[Kind]string),
	}
}

// RefreshTemplates pulls body overrides from the template store. Failures keep
// the built-in templates, so outreach never stalls on the prompts table.
func (m *Mailer) RefreshTemplates(ctx context.Context, src TemplateSource) {
	names := make([]string, 0, len(overridableKinds))
	for _, kind := range overridableKinds {
		names = append(names, string(kind))
	}

	rows, err := src.EmailTemplates(ctx, names)
	if err != nil {
		m.logger.Warn("fetching email templates failed, using built-in fallbacks", zap.Error(err))
		return
	}

	overrides := make(map[Kind]string, len(rows))
	for name, body := range rows {
		overrides[Kind(name)] = body
	}
	m.overrides = overrides
}

// Send renders the template for the kind and delivers it.
func (m *Mailer) Send(ctx context.Context, kind Kind, to string, vars map[string]string) error {
	tmpl, ok := defaultTemplates[kind]
	if !ok {
		return fmt.Errorf("unknown message kind: %s", kind)
	}

	if vars == nil {
		vars = map[string]string{}
	}
	if _, ok := vars["company_name"]; !ok {
		vars["company_name"] = m.company
	}

	body := tmpl.Body
	if override := strings.TrimSpace(m.overrides[kind]); override != "" {
		body = override
	}

	subject := Interpolate(tmpl.Subject, vars)
	body = Interpolate(body, vars)

	if err := m.sender.Send(ctx, to, subject, body, tmpl.HTML); err != nil {
		return err
	}

	m.logger.Debug("message sent",
		zap.String("kind", string(kind)),
		zap.String("to", to),
	)
	return nil
}

// Interpolate replaces {variable} placeholders in a template string. A literal
// replacement keeps operator-supplied templates from being interpreted.
func Interpolate(template string, vars map[string]string) string {
	result := template
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{"+key+"}", value)
	}
	return result
}
