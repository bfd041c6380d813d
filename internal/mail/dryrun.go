package mail

import (
	"context"

	"github.com/rs/zerolog"

	"dunning/internal/logger"
	"dunning/internal/reminder"
)

// DryRunTransport logs the rendered draft instead of delivering it. Used for
// previews and as the default provider when no credentials are configured.
type DryRunTransport struct {
	log zerolog.Logger
}

// NewDryRunTransport creates a transport that only logs.
func NewDryRunTransport() *DryRunTransport {
	return &DryRunTransport{log: logger.WithComponent("mail-dryrun")}
}

// Send implements Transport.
func (t *DryRunTransport) Send(_ context.Context, from string, d *reminder.Draft) error {
	names := make([]string, 0, len(d.Attachments))
	for _, a := range d.Attachments {
		names = append(names, a.Filename)
	}
	t.log.Info().
		Str("client", d.Client).
		Str("from", from).
		Strs("to", d.To).
		Strs("cc", d.CC).
		Str("subject", d.Subject).
		Strs("attachments", names).
		Msg("Dry run, reminder not sent")
	t.log.Debug().Str("body", d.Body).Msg("Dry run body")
	return nil
}
