package pipeline

import (
	"reflect"
	"testing"

	"dunning/pkg/models"
)

func inv(client string, days int, cents int64) models.NormalizedInvoice {
	return models.NormalizedInvoice{
		Number:         "INV/" + client,
		ClientName:     client,
		DaysOverdue:    days,
		AmountDue:      cents,
		CurrencySymbol: "$",
	}
}

func TestGroupByClientAcmeScenario(t *testing.T) {
	invoices := []models.NormalizedInvoice{
		inv("Acme", 10, 10000),
		inv("Acme", 20, 5000),
		inv("Acme", 40, 2550),
	}

	groups := GroupByClient(invoices)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]

	if got := g.TotalAmount(); got != 17550 {
		t.Errorf("TotalAmount = %d, want 17550", got)
	}
	if got := models.FormatCents(g.TotalAmount()); got != "175.50" {
		t.Errorf("formatted total = %q, want \"175.50\"", got)
	}
	if got := g.MaxDaysOverdue(); got != 40 {
		t.Errorf("MaxDaysOverdue = %d, want 40", got)
	}
	if got := g.Tier(); got != Severe {
		t.Errorf("Tier = %s, want severe", got)
	}
}

func TestGroupByClientEmptyInput(t *testing.T) {
	if groups := GroupByClient(nil); len(groups) != 0 {
		t.Errorf("GroupByClient(nil) = %d groups, want 0", len(groups))
	}
	if groups := GroupByClient([]models.NormalizedInvoice{}); len(groups) != 0 {
		t.Errorf("GroupByClient(empty) = %d groups, want 0", len(groups))
	}
}

func TestGroupByClientPreservesOrder(t *testing.T) {
	invoices := []models.NormalizedInvoice{
		inv("Beta", 5, 100),
		inv("Acme", 3, 200),
		inv("Beta", 9, 300),
		inv("Gamma", 1, 400),
		inv("Acme", 7, 500),
	}
	groups := GroupByClient(invoices)

	wantClients := []string{"Beta", "Acme", "Gamma"}
	for i, want := range wantClients {
		if groups[i].ClientName != want {
			t.Fatalf("group %d = %q, want %q", i, groups[i].ClientName, want)
		}
	}
	// Invoices keep their first-seen order inside each group.
	if groups[0].Invoices[0].AmountDue != 100 || groups[0].Invoices[1].AmountDue != 300 {
		t.Errorf("Beta invoices out of order: %v", groups[0].Invoices)
	}
}

// Client identity is the literal name string; no case folding.
func TestGroupByClientCaseSensitive(t *testing.T) {
	invoices := []models.NormalizedInvoice{
		inv("Acme", 5, 100),
		inv("acme", 7, 200),
	}
	groups := GroupByClient(invoices)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2 distinct clients", len(groups))
	}
}

func TestGroupByClientIdempotent(t *testing.T) {
	invoices := []models.NormalizedInvoice{
		inv("Acme", 10, 10000),
		inv("Beta", 20, 5000),
		inv("Acme", 40, 2550),
	}
	first := GroupByClient(invoices)
	second := GroupByClient(invoices)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("aggregation is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestGroupEmails(t *testing.T) {
	invoices := []models.NormalizedInvoice{
		{ClientName: "Acme", ClientEmail: "billing@acme.example"},
		{ClientName: "Acme", ClientEmail: "not-an-address"},
		{ClientName: "Acme", ClientEmail: ""},
		{ClientName: "Acme", ClientEmail: "billing@acme.example"}, // duplicate
		{ClientName: "Acme", ClientEmail: "ap@acme.example"},
	}
	g := GroupByClient(invoices)[0]

	want := []string{"billing@acme.example", "ap@acme.example"}
	if got := g.Emails(); !reflect.DeepEqual(got, want) {
		t.Errorf("Emails() = %v, want %v", got, want)
	}
	if !g.HasEmail() {
		t.Error("HasEmail() = false, want true")
	}

	noMail := GroupByClient([]models.NormalizedInvoice{
		{ClientName: "Beta", ClientEmail: "bogus"},
	})[0]
	if noMail.HasEmail() {
		t.Error("HasEmail() = true for group with only invalid addresses")
	}
}
