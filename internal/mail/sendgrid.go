package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"dunning/internal/logger"
	"dunning/internal/reminder"
)

// SendGridTransport sends drafts through the SendGrid v3 mail API.
type SendGridTransport struct {
	client *sendgrid.Client
	log    zerolog.Logger
}

// NewSendGridTransport creates a transport with the given API key.
func NewSendGridTransport(apiKey string) *SendGridTransport {
	return &SendGridTransport{
		client: sendgrid.NewSendClient(apiKey),
		log:    logger.WithComponent("sendgrid"),
	}
}

// Send implements Transport.
func (t *SendGridTransport) Send(ctx context.Context, from string, d *reminder.Draft) error {
	if len(d.To) == 0 {
		return fmt.Errorf("sendgrid: draft for %q has no recipients", d.Client)
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail("", from))
	m.Subject = d.Subject

	p := sgmail.NewPersonalization()
	for _, to := range d.To {
		p.AddTos(sgmail.NewEmail("", to))
	}
	for _, cc := range d.CC {
		p.AddCCs(sgmail.NewEmail("", cc))
	}
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", d.Body))

	for _, att := range d.Attachments {
		a := sgmail.NewAttachment()
		a.SetFilename(att.Filename)
		a.SetContent(base64.StdEncoding.EncodeToString(att.Bytes))
		a.SetDisposition("attachment")
		m.AddAttachment(a)
	}

	resp, err := t.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid: sending to %v failed: %w", d.To, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: sending to %v failed: status %d: %s", d.To, resp.StatusCode, resp.Body)
	}

	t.log.Info().
		Str("client", d.Client).
		Strs("to", d.To).
		Int("status", resp.StatusCode).
		Msg("Reminder sent via SendGrid")
	return nil
}
