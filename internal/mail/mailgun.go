package mail

import (
	"context"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/rs/zerolog"

	"dunning/internal/logger"
	"dunning/internal/reminder"
)

// MailgunTransport sends drafts through the Mailgun messages API.
type MailgunTransport struct {
	mg  *mailgun.MailgunImpl
	log zerolog.Logger
}

// NewMailgunTransport creates a transport for the given Mailgun domain.
func NewMailgunTransport(domain, apiKey string) *MailgunTransport {
	return &MailgunTransport{
		mg:  mailgun.NewMailgun(domain, apiKey),
		log: logger.WithComponent("mailgun"),
	}
}

// Send implements Transport.
func (t *MailgunTransport) Send(ctx context.Context, from string, d *reminder.Draft) error {
	if len(d.To) == 0 {
		return fmt.Errorf("mailgun: draft for %q has no recipients", d.Client)
	}

	m := t.mg.NewMessage(from, d.Subject, "", d.To...)
	m.SetHTML(d.Body)
	for _, cc := range d.CC {
		m.AddCC(cc)
	}
	for _, a := range d.Attachments {
		m.AddBufferAttachment(a.Filename, a.Bytes)
	}

	_, id, err := t.mg.Send(ctx, m)
	if err != nil {
		return fmt.Errorf("mailgun: sending to %v failed: %w", d.To, err)
	}

	t.log.Info().
		Str("client", d.Client).
		Strs("to", d.To).
		Str("message_id", id).
		Msg("Reminder sent via Mailgun")
	return nil
}
