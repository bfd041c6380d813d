package pipeline

import (
	"fmt"
	"math"
	"time"

	"dunning/internal/logger"
	"dunning/pkg/models"
)

// DateFormat is the accounting system's fixed date layout.
const DateFormat = "2006-01-02"

// Fallback display values for references that failed to resolve.
const (
	FallbackCurrencySymbol = "$"
	FallbackCompanyName    = "Unknown"
)

// NormalizeResult carries the normalized invoices together with the records
// that were excluded, so skips stay observable instead of silently vanishing.
type NormalizeResult struct {
	Invoices []models.NormalizedInvoice
	Skips    []Skip
}

// Normalize joins each raw invoice with its resolved references and computes
// derived fields. refDate is the single "today" shared by the whole cycle;
// days overdue are measured against it, never against the wall clock.
//
// An invoice with an unresolvable partner, a missing required field or an
// unparseable due date is skipped and reported; the batch continues. Output
// order is stable with input order.
func Normalize(refDate time.Time, raws []models.RawInvoice, refs *Resolved) NormalizeResult {
	log := logger.WithComponent("normalizer")

	result := NormalizeResult{
		Invoices: make([]models.NormalizedInvoice, 0, len(raws)),
	}

	for _, raw := range raws {
		if raw.Number == "" {
			result.Skips = append(result.Skips, Skip{
				InvoiceID: raw.ID,
				Reason:    SkipMissingField,
				Detail:    "invoice number is empty",
			})
			continue
		}
		if raw.DueDate == "" {
			result.Skips = append(result.Skips, Skip{
				InvoiceID: raw.ID,
				Number:    raw.Number,
				Reason:    SkipMissingField,
				Detail:    "due date is empty",
			})
			continue
		}
		if raw.PartnerID == 0 {
			result.Skips = append(result.Skips, Skip{
				InvoiceID: raw.ID,
				Number:    raw.Number,
				Reason:    SkipMissingField,
				Detail:    "no partner reference",
			})
			continue
		}

		partner, ok := refs.Partners[raw.PartnerID]
		if !ok {
			result.Skips = append(result.Skips, Skip{
				InvoiceID: raw.ID,
				Number:    raw.Number,
				Reason:    SkipPartnerUnresolved,
				Detail:    fmt.Sprintf("partner id %d has no record", raw.PartnerID),
			})
			continue
		}

		due, err := time.Parse(DateFormat, raw.DueDate)
		if err != nil {
			result.Skips = append(result.Skips, Skip{
				InvoiceID: raw.ID,
				Number:    raw.Number,
				Reason:    SkipBadDueDate,
				Detail:    fmt.Sprintf("due date %q: %v", raw.DueDate, err),
			})
			continue
		}

		inv := models.NormalizedInvoice{
			Number:         raw.Number,
			DueDate:        due,
			DaysOverdue:    daysBetween(due, refDate),
			AmountDue:      toCents(raw.ResidualAmount),
			CurrencySymbol: FallbackCurrencySymbol,
			ClientName:     partner.Name,
			ClientEmail:    partner.Email,
			CompanyName:    FallbackCompanyName,
			Origin:         raw.Origin,
			PartnerID:      raw.PartnerID,
		}

		// Issue date is display-only; a missing or malformed one is not
		// worth losing the invoice over.
		if raw.InvoiceDate != "" {
			if d, err := time.Parse(DateFormat, raw.InvoiceDate); err == nil {
				inv.InvoiceDate = d
			}
		}

		if cur, ok := refs.Currencies[raw.CurrencyID]; ok && cur.Symbol != "" {
			inv.CurrencySymbol = cur.Symbol
		}
		if com, ok := refs.Companies[raw.CompanyID]; ok && com.Name != "" {
			inv.CompanyName = com.Name
		}

		result.Invoices = append(result.Invoices, inv)
	}

	for _, skip := range result.Skips {
		log.Warn().
			Int64("invoice_id", skip.InvoiceID).
			Str("number", skip.Number).
			Str("reason", string(skip.Reason)).
			Str("detail", skip.Detail).
			Msg("Invoice skipped during normalization")
	}
	if len(result.Skips) > 0 {
		log.Info().
			Int("normalized", len(result.Invoices)).
			Int("skipped", len(result.Skips)).
			Msg("Normalization finished with skips")
	}

	return result
}

// daysBetween returns the whole-day difference to − from, comparing calendar
// days rather than 24h intervals so DST shifts cannot skew the count.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// toCents converts a float residual from the wire into minor currency units.
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
