// Package mail delivers reminder drafts through a pluggable provider.
package mail

import (
	"context"
	"errors"
	"fmt"

	"dunning/internal/reminder"
)

// Provider names a supported mail backend.
type Provider string

const (
	ProviderMailgun  Provider = "mailgun"
	ProviderSendGrid Provider = "sendgrid"
	ProviderDryRun   Provider = "dryrun"
)

// ErrUnknownProvider is returned when the configured provider name does not
// match any implementation.
var ErrUnknownProvider = errors.New("unknown mail provider")

// Transport hands a finished draft to a mail backend. Implementations return
// a non-nil error on any delivery failure; they never mutate the draft (the
// caller owns state transitions).
type Transport interface {
	Send(ctx context.Context, from string, d *reminder.Draft) error
}

// Config carries the provider credentials.
type Config struct {
	Provider       Provider
	MailgunDomain  string
	MailgunAPIKey  string
	SendGridAPIKey string
}

// New constructs the transport for the configured provider.
func New(cfg Config) (Transport, error) {
	switch cfg.Provider {
	case ProviderMailgun:
		return NewMailgunTransport(cfg.MailgunDomain, cfg.MailgunAPIKey), nil
	case ProviderSendGrid:
		return NewSendGridTransport(cfg.SendGridAPIKey), nil
	case ProviderDryRun:
		return NewDryRunTransport(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
