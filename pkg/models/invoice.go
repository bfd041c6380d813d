package models

import (
	"fmt"
	"time"
)

// RawInvoice is an overdue-invoice record as returned by the accounting
// system. Read-only input; reference fields are foreign ids (0 means the
// record carries no reference).
type RawInvoice struct {
	ID             int64
	Number         string // human-readable invoice reference
	InvoiceDate    string // issue date, raw YYYY-MM-DD (may be empty)
	DueDate        string // raw YYYY-MM-DD
	ResidualAmount float64
	PartnerID      int64
	CurrencyID     int64
	CompanyID      int64
	Origin         string // sales order or other source document
}

// Partner is a resolved client record.
type Partner struct {
	ID    int64
	Name  string
	Email string // may be empty
}

// Currency is a resolved currency record.
type Currency struct {
	ID     int64
	Name   string
	Symbol string
}

// Company is a resolved issuing-company record.
type Company struct {
	ID   int64
	Name string
}

// NormalizedInvoice is a RawInvoice joined with its resolved references and
// derived fields. Immutable after creation.
//
// Amounts are stored as minor currency units (cents) to avoid float drift
// when summing across many invoices.
type NormalizedInvoice struct {
	Number         string
	InvoiceDate    time.Time // zero when the source record has none
	DueDate        time.Time
	DaysOverdue    int
	AmountDue      int64 // minor units
	CurrencySymbol string
	ClientName     string
	ClientEmail    string // empty when the partner has no address on file
	CompanyName    string
	Origin         string
	PartnerID      int64 // external partner identifier, kept for document generation
}

// FormatCents renders minor currency units as a decimal string ("175.50").
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
