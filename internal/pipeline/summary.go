package pipeline

// Summary is the roll-up presented after a cycle: counts, totals and the
// per-entity failure attribution required for the final report.
type Summary struct {
	InvoiceCount int `json:"invoice_count"`
	ClientCount  int `json:"client_count"`
	SkippedCount int `json:"skipped_count"`

	// TotalsBySymbol keeps per-currency totals in minor units; summing
	// across currencies would be meaningless.
	TotalsBySymbol map[string]int64 `json:"totals_by_symbol"`

	AverageDaysOverdue float64 `json:"average_days_overdue"`

	// TierCounts maps tier name to invoice count in that bucket.
	TierCounts map[string]int `json:"tier_counts"`

	// Skipped lists every excluded invoice with its reason.
	Skipped []Skip `json:"skipped,omitempty"`
}

// Summary computes the roll-up for the cycle.
func (c *Cycle) Summary() Summary {
	s := Summary{
		InvoiceCount:   len(c.Invoices),
		ClientCount:    len(c.Groups),
		SkippedCount:   len(c.Skips),
		TotalsBySymbol: make(map[string]int64),
		TierCounts:     make(map[string]int),
		Skipped:        c.Skips,
	}

	var totalDays int
	for _, inv := range c.Invoices {
		s.TotalsBySymbol[inv.CurrencySymbol] += inv.AmountDue
		totalDays += inv.DaysOverdue
		s.TierCounts[TierFor(inv.DaysOverdue).String()]++
	}
	if len(c.Invoices) > 0 {
		s.AverageDaysOverdue = float64(totalDays) / float64(len(c.Invoices))
	}
	return s
}
