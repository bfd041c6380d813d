package pipeline

import (
	"net/mail"

	"dunning/pkg/models"
)

// ClientGroup is the aggregated view of one client's overdue invoices.
// The invoice slice is the single source of truth: totals, worst age and
// tier are always derived from it, never stored, so the values cannot
// drift from the membership.
//
// Clients are keyed by the literal display name. "Acme" and "acme" are two
// distinct clients; no case folding is applied.
type ClientGroup struct {
	ClientName string
	Invoices   []models.NormalizedInvoice
}

// GroupByClient groups invoices by client name, preserving the first-seen
// order of clients and of invoices within each client. Zero input yields
// zero groups. The operation is idempotent: the same input always produces
// identical groups.
func GroupByClient(invoices []models.NormalizedInvoice) []ClientGroup {
	index := make(map[string]int, len(invoices))
	var groups []ClientGroup
	for _, inv := range invoices {
		i, ok := index[inv.ClientName]
		if !ok {
			i = len(groups)
			index[inv.ClientName] = i
			groups = append(groups, ClientGroup{ClientName: inv.ClientName})
		}
		groups[i].Invoices = append(groups[i].Invoices, inv)
	}
	return groups
}

// TotalAmount sums the members' amounts due, in minor units.
func (g ClientGroup) TotalAmount() int64 {
	var total int64
	for _, inv := range g.Invoices {
		total += inv.AmountDue
	}
	return total
}

// MaxDaysOverdue returns the age of the group's worst invoice.
func (g ClientGroup) MaxDaysOverdue() int {
	max := 0
	for i, inv := range g.Invoices {
		if i == 0 || inv.DaysOverdue > max {
			max = inv.DaysOverdue
		}
	}
	return max
}

// Tier classifies the group by its worst invoice, using the same threshold
// function applied to individual invoices.
func (g ClientGroup) Tier() Severity {
	return TierFor(g.MaxDaysOverdue())
}

// HasEmail reports whether any member carries a syntactically valid address.
func (g ClientGroup) HasEmail() bool {
	return len(g.Emails()) > 0
}

// Emails returns the distinct valid member addresses in first-seen order.
// These become the recipient list of the group's reminder.
func (g ClientGroup) Emails() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, inv := range g.Invoices {
		if inv.ClientEmail == "" {
			continue
		}
		if _, err := mail.ParseAddress(inv.ClientEmail); err != nil {
			continue
		}
		if _, ok := seen[inv.ClientEmail]; ok {
			continue
		}
		seen[inv.ClientEmail] = struct{}{}
		out = append(out, inv.ClientEmail)
	}
	return out
}

// CurrencySymbol returns the first member's symbol for display. Mixed
// currencies within one client keep their per-invoice symbols in the table.
func (g ClientGroup) CurrencySymbol() string {
	if len(g.Invoices) == 0 {
		return ""
	}
	return g.Invoices[0].CurrencySymbol
}

// CompanyName returns the issuing company shown in message bodies.
func (g ClientGroup) CompanyName() string {
	if len(g.Invoices) == 0 {
		return ""
	}
	return g.Invoices[0].CompanyName
}
