package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dunning/internal/config"
	"dunning/internal/logger"
	"dunning/internal/pipeline"
	"dunning/pkg/models"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "List overdue invoices classified by severity",
	Long: `Fetch overdue customer invoices from the accounting system, resolve
client, currency and company references, and print the invoices bucketed by
severity tier together with a run summary.

Invoices up to 15 days overdue are recent, 16-30 days moderate, and anything
older severe.`,
	Example: `  # Human-readable buckets and summary
  dunning fetch

  # Machine-readable output
  dunning fetch --json

  # Reproduce a past run by pinning the reference date
  dunning fetch --ref-date 2026-08-01`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().Bool("json", false, "Emit JSON instead of text")
	fetchCmd.Flags().String("ref-date", "", "Reference date (YYYY-MM-DD, default today)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("fetch")

	asJSON, _ := cmd.Flags().GetBool("json")
	refFlag, _ := cmd.Flags().GetString("ref-date")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	refDate, err := referenceDate(refFlag)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cycle, err := runCycle(ctx, cfg, refDate)
	if err != nil {
		return err
	}
	log.Info().Int("invoices", len(cycle.Invoices)).Msg("Cycle fetched")

	if asJSON {
		return printFetchJSON(cycle)
	}
	printFetchText(cycle)
	return nil
}

func printFetchJSON(cycle *pipeline.Cycle) error {
	out := struct {
		ReferenceDate string                     `json:"reference_date"`
		Invoices      []models.NormalizedInvoice `json:"invoices"`
		Summary       pipeline.Summary           `json:"summary"`
	}{
		ReferenceDate: cycle.ReferenceDate.Format(pipeline.DateFormat),
		Invoices:      cycle.Invoices,
		Summary:       cycle.Summary(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printFetchText(cycle *pipeline.Cycle) {
	buckets := cycle.Buckets()
	for _, tier := range pipeline.Severities() {
		invoices := buckets[tier]
		if len(invoices) == 0 {
			continue
		}
		fmt.Printf("\n%s (%d invoices)\n", tierHeading(tier), len(invoices))
		for _, inv := range invoices {
			fmt.Printf("  %-18s  %s  %4dd  %s%s  %s\n",
				inv.Number,
				inv.DueDate.Format(pipeline.DateFormat),
				inv.DaysOverdue,
				inv.CurrencySymbol,
				models.FormatCents(inv.AmountDue),
				inv.ClientName)
		}
	}

	s := cycle.Summary()
	fmt.Printf("\nSummary: %d invoices across %d clients, avg %.1f days overdue\n",
		s.InvoiceCount, s.ClientCount, s.AverageDaysOverdue)
	for symbol, total := range s.TotalsBySymbol {
		fmt.Printf("  total %s%s\n", symbol, models.FormatCents(total))
	}
	if s.SkippedCount > 0 {
		fmt.Printf("  %d invoices skipped:\n", s.SkippedCount)
		for _, skip := range s.Skipped {
			fmt.Printf("    %s\n", skip)
		}
	}
}

func tierHeading(tier pipeline.Severity) string {
	switch tier {
	case pipeline.Recent:
		return fmt.Sprintf("Recent (up to %d days)", pipeline.RecentMaxDays)
	case pipeline.Moderate:
		return fmt.Sprintf("Moderate (%d-%d days)", pipeline.RecentMaxDays+1, pipeline.ModerateMaxDays)
	default:
		return fmt.Sprintf("Severe (over %d days)", pipeline.ModerateMaxDays)
	}
}
