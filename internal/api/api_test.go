package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dunning/internal/pipeline"
	"dunning/pkg/models"
)

func fixtureCycle() *pipeline.Cycle {
	invoices := []models.NormalizedInvoice{
		{
			Number: "INV/1", DueDate: time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC),
			DaysOverdue: 10, AmountDue: 10000, CurrencySymbol: "$",
			ClientName: "Acme", ClientEmail: "billing@acme.example", CompanyName: "Initech",
		},
		{
			Number: "INV/2", DueDate: time.Date(2026, 7, 19, 0, 0, 0, 0, time.UTC),
			DaysOverdue: 40, AmountDue: 7550, CurrencySymbol: "$",
			ClientName: "Acme", CompanyName: "Initech",
		},
		{
			Number: "INV/3", DueDate: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
			DaysOverdue: 18, AmountDue: 2000, CurrencySymbol: "€",
			ClientName: "Beta", CompanyName: "Initech",
		},
	}
	return &pipeline.Cycle{
		ReferenceDate: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Invoices:      invoices,
		Groups:        pipeline.GroupByClient(invoices),
	}
}

func testServer(cycle *pipeline.Cycle, fetchErr error) *httptest.Server {
	return httptest.NewServer(NewRouter(func(*http.Request) (*pipeline.Cycle, error) {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return cycle, nil
	}))
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Error string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatal(err)
	}
	if out != nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			t.Fatal(err)
		}
	}
	return resp.StatusCode
}

func TestListGroups(t *testing.T) {
	srv := testServer(fixtureCycle(), nil)
	defer srv.Close()

	var groups []groupView
	if status := getJSON(t, srv.URL+"/api/v1/groups", &groups); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	acme := groups[0]
	if acme.Client != "Acme" || acme.InvoiceCount != 2 {
		t.Errorf("first group = %+v", acme)
	}
	if acme.TotalCents != 17550 || acme.Total != "175.50" {
		t.Errorf("acme total = %d / %q", acme.TotalCents, acme.Total)
	}
	if acme.Tier != "severe" || acme.MaxDaysOverdue != 40 {
		t.Errorf("acme classification = %s / %d", acme.Tier, acme.MaxDaysOverdue)
	}
	if !acme.HasEmail {
		t.Error("acme should have an email")
	}
	if groups[1].Client != "Beta" || groups[1].Tier != "moderate" {
		t.Errorf("second group = %+v", groups[1])
	}
}

func TestListInvoices(t *testing.T) {
	srv := testServer(fixtureCycle(), nil)
	defer srv.Close()

	var invoices []invoiceView
	if status := getJSON(t, srv.URL+"/api/v1/invoices", &invoices); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(invoices) != 3 {
		t.Fatalf("got %d invoices, want 3", len(invoices))
	}
	if invoices[0].Tier != "recent" || invoices[1].Tier != "severe" || invoices[2].Tier != "moderate" {
		t.Errorf("tiers = %s/%s/%s", invoices[0].Tier, invoices[1].Tier, invoices[2].Tier)
	}
	if invoices[0].DueDate != "2026-08-18" {
		t.Errorf("due date = %q", invoices[0].DueDate)
	}
}

func TestGetSummary(t *testing.T) {
	srv := testServer(fixtureCycle(), nil)
	defer srv.Close()

	var summary pipeline.Summary
	if status := getJSON(t, srv.URL+"/api/v1/summary", &summary); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if summary.InvoiceCount != 3 || summary.ClientCount != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.TotalsBySymbol["$"] != 17550 {
		t.Errorf("dollar total = %d", summary.TotalsBySymbol["$"])
	}
}

func TestFetchFailure(t *testing.T) {
	srv := testServer(nil, errors.New("upstream down"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/groups")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}
