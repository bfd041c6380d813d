// Package pipeline turns raw overdue-invoice records plus reference data
// into the classified, aggregated view the rest of the application displays
// and emails.
//
// A cycle is the unit of work: one fetch, one shared reference date, one
// resolve/normalize/group pass. Nothing is cached across cycles; a refresh
// builds a fresh Cycle and the old one is discarded. All network I/O happens
// inside the Resolver's batched lookups; everything downstream is pure.
package pipeline

import (
	"context"
	"time"

	"dunning/internal/logger"
	"dunning/pkg/models"
)

// Cycle holds the state of one fetch/classify run. Constructed by Run and
// treated as read-only afterwards; there are no ambient globals, each stage
// receives the cycle's data explicitly.
type Cycle struct {
	// ReferenceDate is the "today" captured once at the start of the run.
	// Every days-overdue value in the cycle is measured against it.
	ReferenceDate time.Time

	Refs     *Resolved
	Invoices []models.NormalizedInvoice
	Skips    []Skip
	Groups   []ClientGroup
}

// Run executes one full pipeline cycle over the given raw invoices.
func Run(ctx context.Context, refDate time.Time, raws []models.RawInvoice, source ReferenceSource, cfg ResolverConfig) (*Cycle, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	log := logger.WithComponent("pipeline")

	refs, err := NewResolver(source, cfg).Resolve(ctx, raws)
	if err != nil {
		return nil, err
	}

	normalized := Normalize(refDate, raws, refs)
	groups := GroupByClient(normalized.Invoices)

	log.Info().
		Str("reference_date", refDate.Format(DateFormat)).
		Int("raw", len(raws)).
		Int("normalized", len(normalized.Invoices)).
		Int("skipped", len(normalized.Skips)).
		Int("clients", len(groups)).
		Msg("Pipeline cycle completed")

	return &Cycle{
		ReferenceDate: refDate,
		Refs:          refs,
		Invoices:      normalized.Invoices,
		Skips:         normalized.Skips,
		Groups:        groups,
	}, nil
}

// GroupFor returns the group for the given client name, if present.
func (c *Cycle) GroupFor(clientName string) (ClientGroup, bool) {
	for _, g := range c.Groups {
		if g.ClientName == clientName {
			return g, true
		}
	}
	return ClientGroup{}, false
}

// Buckets splits the cycle's invoices into per-tier display buckets using
// the same threshold function the groups use. Each invoice lands in exactly
// one bucket.
func (c *Cycle) Buckets() map[Severity][]models.NormalizedInvoice {
	buckets := make(map[Severity][]models.NormalizedInvoice)
	for _, inv := range c.Invoices {
		tier := TierFor(inv.DaysOverdue)
		buckets[tier] = append(buckets[tier], inv)
	}
	return buckets
}
