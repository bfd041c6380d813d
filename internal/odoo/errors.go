package odoo

import (
	"errors"
	"fmt"
)

// Common client errors
var (
	// ErrMissingCredentials is returned when the connection settings are
	// incomplete.
	ErrMissingCredentials = errors.New("missing accounting-system credentials")

	// ErrAuthFailed is returned when the server rejects the login.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadResponse is returned when the server's reply cannot be decoded.
	ErrBadResponse = errors.New("malformed server response")
)

// RPCError wraps a remote-call failure with the operation and model involved.
type RPCError struct {
	// Op is the operation that failed (e.g. "SearchOverdueInvoices", "Partners").
	Op string

	// Model is the remote model being queried, if any.
	Model string

	// Err is the underlying error.
	Err error

	// Remote carries the server-side error message, if one was returned.
	Remote string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	if e.Remote != "" {
		return fmt.Sprintf("odoo: %s (%s) failed: %s: %v", e.Op, e.Model, e.Remote, e.Err)
	}
	if e.Model != "" {
		return fmt.Sprintf("odoo: %s (%s) failed: %v", e.Op, e.Model, e.Err)
	}
	return fmt.Sprintf("odoo: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RPCError) Unwrap() error {
	return e.Err
}

// Is implements error matching for the package sentinels.
func (e *RPCError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
