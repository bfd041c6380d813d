package pdfgen

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"dunning/internal/pipeline"
	"dunning/pkg/models"
)

func testCycle() *pipeline.Cycle {
	invoices := []models.NormalizedInvoice{
		{
			Number: "INV/2026/0001", DueDate: time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC),
			DaysOverdue: 10, AmountDue: 10000, CurrencySymbol: "$",
			ClientName: "Acme", CompanyName: "Initech", Origin: "SO001", PartnerID: 7,
		},
		{
			Number: "INV/2026/0002", DueDate: time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC),
			DaysOverdue: 20, AmountDue: 5000, CurrencySymbol: "$",
			ClientName: "Acme", CompanyName: "Initech", PartnerID: 7,
		},
	}
	return &pipeline.Cycle{
		ReferenceDate: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Invoices:      invoices,
		Groups:        pipeline.GroupByClient(invoices),
	}
}

func TestInvoiceDocument(t *testing.T) {
	p := NewStatementProducer(testCycle())

	data, err := p.InvoiceDocument(context.Background(), "Acme", 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("no bytes produced")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with a PDF header: %q", data[:8])
	}
}

func TestInvoiceDocumentDeterministicFailure(t *testing.T) {
	p := NewStatementProducer(testCycle())

	_, err := p.InvoiceDocument(context.Background(), "Nobody", 0)
	if !errors.Is(err, ErrUnknownClient) {
		t.Errorf("err = %v, want ErrUnknownClient", err)
	}
}

func TestStatementFilename(t *testing.T) {
	refDate := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	got := StatementFilename("Acme & Söhne GmbH", refDate)
	want := "statement-Acme__Shne_GmbH-2026-08-28.pdf"
	if got != want {
		t.Errorf("StatementFilename = %q, want %q", got, want)
	}
}
