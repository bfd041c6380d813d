package cmd

import (
	"context"
	"fmt"
	"time"

	"dunning/internal/config"
	"dunning/internal/odoo"
	"dunning/internal/pipeline"
)

// runCycle connects to the accounting system and executes one full pipeline
// cycle against the given reference date.
func runCycle(ctx context.Context, cfg *config.Config, refDate time.Time) (*pipeline.Cycle, error) {
	client, err := odoo.NewClient(odoo.Config{
		URL:      cfg.OdooURL,
		Database: cfg.OdooDatabase,
		Username: cfg.OdooUsername,
		Password: cfg.OdooPassword,
	})
	if err != nil {
		return nil, err
	}
	if err := client.Authenticate(ctx); err != nil {
		return nil, err
	}

	raws, err := client.SearchOverdueInvoices(ctx, refDate)
	if err != nil {
		return nil, err
	}

	return pipeline.Run(ctx, refDate, raws, client, pipeline.ResolverConfig{
		BatchSize:         cfg.BatchSize,
		RequestsPerSecond: cfg.RPCRequestsPerSec,
	})
}

// referenceDate resolves the --ref-date flag; empty means today. The value
// is captured once here and threaded through the whole cycle so every stage
// agrees on elapsed days.
func referenceDate(flagValue string) (time.Time, error) {
	if flagValue == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(pipeline.DateFormat, flagValue)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --ref-date %q (want YYYY-MM-DD): %w", flagValue, err)
	}
	return t, nil
}
