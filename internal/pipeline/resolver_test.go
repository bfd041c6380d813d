package pipeline

import (
	"context"
	"errors"
	"testing"

	"dunning/pkg/models"
)

// fakeSource records the batches it was asked for and serves records from
// in-memory maps, leaving unknown ids unanswered like the real system does.
type fakeSource struct {
	partners   map[int64]models.Partner
	currencies map[int64]models.Currency
	companies  map[int64]models.Company

	partnerBatches [][]int64
	failPartners   error
}

func (f *fakeSource) Partners(_ context.Context, ids []int64) ([]models.Partner, error) {
	f.partnerBatches = append(f.partnerBatches, ids)
	if f.failPartners != nil {
		return nil, f.failPartners
	}
	var out []models.Partner
	for _, id := range ids {
		if p, ok := f.partners[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) Currencies(_ context.Context, ids []int64) ([]models.Currency, error) {
	var out []models.Currency
	for _, id := range ids {
		if c, ok := f.currencies[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeSource) Companies(_ context.Context, ids []int64) ([]models.Company, error) {
	var out []models.Company
	for _, id := range ids {
		if c, ok := f.companies[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		partners: map[int64]models.Partner{
			1: {ID: 1, Name: "Acme"},
			2: {ID: 2, Name: "Beta"},
			3: {ID: 3, Name: "Gamma"},
		},
		currencies: map[int64]models.Currency{
			10: {ID: 10, Name: "USD", Symbol: "$"},
		},
		companies: map[int64]models.Company{
			20: {ID: 20, Name: "Initech"},
		},
	}
}

func rawWithRefs(id, partner, currency, company int64) models.RawInvoice {
	return models.RawInvoice{
		ID: id, Number: "INV", DueDate: "2026-08-01",
		PartnerID: partner, CurrencyID: currency, CompanyID: company,
	}
}

func TestResolverDeduplicates(t *testing.T) {
	src := newFakeSource()
	raws := []models.RawInvoice{
		rawWithRefs(1, 1, 10, 20),
		rawWithRefs(2, 1, 10, 20),
		rawWithRefs(3, 2, 10, 20),
		rawWithRefs(4, 1, 10, 20),
	}

	resolver := NewResolver(src, ResolverConfig{BatchSize: 100})
	resolved, err := resolver.Resolve(context.Background(), raws)
	if err != nil {
		t.Fatal(err)
	}

	if len(src.partnerBatches) != 1 {
		t.Fatalf("got %d partner batches, want 1", len(src.partnerBatches))
	}
	if got := src.partnerBatches[0]; len(got) != 2 {
		t.Errorf("partner batch = %v, want 2 unique ids", got)
	}
	if len(resolved.Partners) != 2 {
		t.Errorf("resolved %d partners, want 2", len(resolved.Partners))
	}
}

func TestResolverBatches(t *testing.T) {
	src := newFakeSource()
	src.partners[4] = models.Partner{ID: 4, Name: "Delta"}
	src.partners[5] = models.Partner{ID: 5, Name: "Epsilon"}

	var raws []models.RawInvoice
	for id := int64(1); id <= 5; id++ {
		raws = append(raws, rawWithRefs(id, id, 10, 20))
	}

	resolver := NewResolver(src, ResolverConfig{BatchSize: 2})
	resolved, err := resolver.Resolve(context.Background(), raws)
	if err != nil {
		t.Fatal(err)
	}

	wantSizes := []int{2, 2, 1}
	if len(src.partnerBatches) != len(wantSizes) {
		t.Fatalf("got %d batches, want %d", len(src.partnerBatches), len(wantSizes))
	}
	for i, want := range wantSizes {
		if len(src.partnerBatches[i]) != want {
			t.Errorf("batch %d has %d ids, want %d", i, len(src.partnerBatches[i]), want)
		}
	}
	if len(resolved.Partners) != 5 {
		t.Errorf("resolved %d partners, want 5", len(resolved.Partners))
	}
}

func TestResolverToleratesMissingIDs(t *testing.T) {
	src := newFakeSource()
	raws := []models.RawInvoice{
		rawWithRefs(1, 1, 10, 20),
		rawWithRefs(2, 999, 888, 777), // none of these resolve
	}

	resolver := NewResolver(src, ResolverConfig{BatchSize: 100})
	resolved, err := resolver.Resolve(context.Background(), raws)
	if err != nil {
		t.Fatalf("missing ids must not fail the batch: %v", err)
	}
	if _, ok := resolved.Partners[999]; ok {
		t.Error("unresolvable id should be absent from the map")
	}
	if _, ok := resolved.Partners[1]; !ok {
		t.Error("resolvable id missing from the map")
	}
}

func TestResolverSkipsNullRefs(t *testing.T) {
	src := newFakeSource()
	raws := []models.RawInvoice{
		rawWithRefs(1, 0, 0, 0), // no references at all
		rawWithRefs(2, 1, 10, 20),
	}

	resolver := NewResolver(src, ResolverConfig{BatchSize: 100})
	if _, err := resolver.Resolve(context.Background(), raws); err != nil {
		t.Fatal(err)
	}
	for _, batch := range src.partnerBatches {
		for _, id := range batch {
			if id == 0 {
				t.Fatal("null reference id 0 must not be looked up")
			}
		}
	}
}

func TestResolverWrapsErrors(t *testing.T) {
	src := newFakeSource()
	src.failPartners = errors.New("boom")

	resolver := NewResolver(src, ResolverConfig{BatchSize: 100})
	_, err := resolver.Resolve(context.Background(), []models.RawInvoice{rawWithRefs(1, 1, 10, 20)})
	if err == nil {
		t.Fatal("expected error")
	}
	var resolveErr *ResolveError
	if !errors.As(err, &resolveErr) {
		t.Fatalf("error %T is not a *ResolveError", err)
	}
	if resolveErr.Category != "partner" {
		t.Errorf("Category = %q, want partner", resolveErr.Category)
	}
	if !errors.Is(err, src.failPartners) {
		t.Error("underlying error lost in wrapping")
	}
}
