package reminder

import (
	"errors"
	"fmt"
)

// Common reminder errors
var (
	// ErrNoRecipient is returned when a client group carries no valid email
	// address to send to.
	ErrNoRecipient = errors.New("client has no valid email address")

	// ErrDraftState is returned on an illegal draft state transition, such
	// as re-sending a draft that was already sent.
	ErrDraftState = errors.New("invalid draft state transition")

	// ErrUnknownTier is returned when no template exists for the requested
	// severity tier.
	ErrUnknownTier = errors.New("no template for severity tier")
)

// RenderError wraps a per-client rendering failure. It is fatal to that one
// client's draft and never to the rest of the batch.
type RenderError struct {
	// Client is the client group whose rendering failed.
	Client string

	// Tier is the severity tier being rendered.
	Tier string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("reminder: rendering %s tier for client %q failed: %v", e.Tier, e.Client, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is implements error matching so callers can test against the sentinels.
func (e *RenderError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
