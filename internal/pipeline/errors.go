package pipeline

import (
	"errors"
	"fmt"
)

// Common pipeline errors
var (
	// ErrEmptyGroup is returned when a client group unexpectedly contains no
	// invoices. Grouping never produces empty groups, so hitting this means
	// an upstream bug rather than bad input.
	ErrEmptyGroup = errors.New("client group has no invoices")

	// ErrNilSource is returned when a cycle is run without a reference source.
	ErrNilSource = errors.New("reference source is nil")
)

// SkipReason identifies why a raw invoice was excluded from normalization.
type SkipReason string

const (
	// SkipPartnerUnresolved means the invoice's partner id had no matching
	// record in the resolved reference set.
	SkipPartnerUnresolved SkipReason = "partner_unresolved"

	// SkipBadDueDate means the due date could not be parsed.
	SkipBadDueDate SkipReason = "bad_due_date"

	// SkipMissingField means a required field (invoice number, due date or
	// partner reference) was absent from the source record.
	SkipMissingField SkipReason = "missing_field"
)

// Skip records one excluded invoice so that no failure is silently lost.
// Every skip is attributable to a specific source record.
type Skip struct {
	InvoiceID int64
	Number    string
	Reason    SkipReason
	Detail    string
}

func (s Skip) String() string {
	if s.Detail != "" {
		return fmt.Sprintf("invoice %d (%s): %s: %s", s.InvoiceID, s.Number, s.Reason, s.Detail)
	}
	return fmt.Sprintf("invoice %d (%s): %s", s.InvoiceID, s.Number, s.Reason)
}

// ResolveError wraps a reference-lookup failure with the category and batch
// that failed.
type ResolveError struct {
	// Category is the reference category being fetched (partner, currency, company).
	Category string

	// Batch is the index of the failing batch within the category.
	Batch int

	// Err is the underlying error from the reference source.
	Err error
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	return fmt.Sprintf("pipeline: resolving %s batch %d failed: %v", e.Category, e.Batch, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ResolveError) Unwrap() error {
	return e.Err
}
