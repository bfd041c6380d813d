package pipeline

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"dunning/internal/logger"
	"dunning/pkg/models"
)

// ReferenceSource is the batched lookup capability of the accounting system.
// Each call must return at most as many records as ids were requested; ids
// with no matching record (deleted, access-denied) are simply absent from
// the result.
type ReferenceSource interface {
	Partners(ctx context.Context, ids []int64) ([]models.Partner, error)
	Currencies(ctx context.Context, ids []int64) ([]models.Currency, error)
	Companies(ctx context.Context, ids []int64) ([]models.Company, error)
}

// Resolved holds the reference records for one batch of invoices, keyed by id.
// Immutable for the lifetime of the cycle that produced it.
type Resolved struct {
	Partners   map[int64]models.Partner
	Currencies map[int64]models.Currency
	Companies  map[int64]models.Company
}

// ResolverConfig holds configuration for reference resolution.
type ResolverConfig struct {
	// BatchSize is the maximum number of ids per lookup call, bounded by the
	// accounting system's per-call limits.
	BatchSize int

	// RequestsPerSecond throttles lookup calls against the external API.
	// Zero or negative disables throttling.
	RequestsPerSecond float64
}

// DefaultResolverConfig returns a ResolverConfig with sensible defaults.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		BatchSize:         1000,
		RequestsPerSecond: 4,
	}
}

// Resolver deduplicates the foreign ids referenced by a batch of invoices
// and resolves them to display records via sequential batched lookups.
type Resolver struct {
	source  ReferenceSource
	cfg     ResolverConfig
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewResolver creates a Resolver over the given reference source.
func NewResolver(source ReferenceSource, cfg ResolverConfig) *Resolver {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultResolverConfig().BatchSize
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Resolver{
		source:  source,
		cfg:     cfg,
		limiter: limiter,
		log:     logger.WithComponent("resolver"),
	}
}

// Resolve fetches the partner, currency and company records referenced by
// the given invoices. Batches are processed sequentially; a failed batch
// fails the whole resolve (the caller discards the cycle and retries).
func (r *Resolver) Resolve(ctx context.Context, invoices []models.RawInvoice) (*Resolved, error) {
	resolved := &Resolved{
		Partners:   make(map[int64]models.Partner),
		Currencies: make(map[int64]models.Currency),
		Companies:  make(map[int64]models.Company),
	}

	partnerIDs := uniqueIDs(invoices, func(inv models.RawInvoice) int64 { return inv.PartnerID })
	currencyIDs := uniqueIDs(invoices, func(inv models.RawInvoice) int64 { return inv.CurrencyID })
	companyIDs := uniqueIDs(invoices, func(inv models.RawInvoice) int64 { return inv.CompanyID })

	r.log.Debug().
		Int("invoices", len(invoices)).
		Int("partners", len(partnerIDs)).
		Int("currencies", len(currencyIDs)).
		Int("companies", len(companyIDs)).
		Msg("Resolving reference records")

	err := r.eachBatch(ctx, "partner", partnerIDs, func(ctx context.Context, batch []int64) error {
		records, err := r.source.Partners(ctx, batch)
		if err != nil {
			return err
		}
		for _, rec := range records {
			resolved.Partners[rec.ID] = rec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.eachBatch(ctx, "currency", currencyIDs, func(ctx context.Context, batch []int64) error {
		records, err := r.source.Currencies(ctx, batch)
		if err != nil {
			return err
		}
		for _, rec := range records {
			resolved.Currencies[rec.ID] = rec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.eachBatch(ctx, "company", companyIDs, func(ctx context.Context, batch []int64) error {
		records, err := r.source.Companies(ctx, batch)
		if err != nil {
			return err
		}
		for _, rec := range records {
			resolved.Companies[rec.ID] = rec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().
		Int("partners", len(resolved.Partners)).
		Int("currencies", len(resolved.Currencies)).
		Int("companies", len(resolved.Companies)).
		Msg("Reference records resolved")

	return resolved, nil
}

// eachBatch splits ids into BatchSize chunks and invokes fetch for each,
// waiting on the rate limiter between calls.
func (r *Resolver) eachBatch(ctx context.Context, category string, ids []int64, fetch func(context.Context, []int64) error) error {
	for batch := 0; len(ids) > 0; batch++ {
		n := r.cfg.BatchSize
		if n > len(ids) {
			n = len(ids)
		}
		chunk := ids[:n]
		ids = ids[n:]

		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return &ResolveError{Category: category, Batch: batch, Err: err}
			}
		}
		if err := fetch(ctx, chunk); err != nil {
			return &ResolveError{Category: category, Batch: batch, Err: err}
		}
	}
	return nil
}

// uniqueIDs collects the distinct non-zero ids picked from each invoice,
// in first-seen order.
func uniqueIDs(invoices []models.RawInvoice, pick func(models.RawInvoice) int64) []int64 {
	seen := make(map[int64]struct{}, len(invoices))
	var ids []int64
	for _, inv := range invoices {
		id := pick(inv)
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
