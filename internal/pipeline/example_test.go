package pipeline_test

import (
	"fmt"

	"dunning/internal/pipeline"
	"dunning/pkg/models"
)

// ExampleTierFor shows the severity thresholds: 15 and 30 days, inclusive on
// the lower tier.
func ExampleTierFor() {
	for _, days := range []int{10, 15, 16, 30, 31} {
		fmt.Printf("%d days -> %s\n", days, pipeline.TierFor(days))
	}
	// Output:
	// 10 days -> recent
	// 15 days -> recent
	// 16 days -> moderate
	// 30 days -> moderate
	// 31 days -> severe
}

// ExampleGroupByClient aggregates a normalized batch into per-client groups.
func ExampleGroupByClient() {
	invoices := []models.NormalizedInvoice{
		{ClientName: "Acme", DaysOverdue: 10, AmountDue: 10000},
		{ClientName: "Beta", DaysOverdue: 8, AmountDue: 7000},
		{ClientName: "Acme", DaysOverdue: 40, AmountDue: 7550},
	}
	for _, g := range pipeline.GroupByClient(invoices) {
		fmt.Printf("%s: %s due, worst %d days, %s\n",
			g.ClientName, models.FormatCents(g.TotalAmount()), g.MaxDaysOverdue(), g.Tier())
	}
	// Output:
	// Acme: 175.50 due, worst 40 days, severe
	// Beta: 70.00 due, worst 8 days, recent
}
