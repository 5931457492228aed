package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// stubAdapter returns canned records or a canned error.
type stubAdapter struct {
	name    string
	records []Record
	err     error
	calls   int
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Fetch(_ context.Context, _ string, count int) ([]Record, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.records) > count {
		return s.records[:count], nil
	}
	return s.records, nil
}

// panicAdapter panics on every fetch.
type panicAdapter struct{}

func (panicAdapter) Name() string { return "panic" }

func (panicAdapter) Fetch(context.Context, string, int) ([]Record, error) {
	panic("adapter bug")
}

func stubRecords(prefix string, n int) []Record {
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			URL:    fmt.Sprintf("https://example.com/%s/%d.jpg", prefix, i),
			Source: SourceStockAPI,
		}
	}
	return records
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestResolveExactCount(t *testing.T) {
	r := NewResolver([]Adapter{
		&stubAdapter{name: "one", records: stubRecords("one", 2)},
		PlaceholderAdapter{},
	}, quietLogger())

	for _, count := range []int{1, 2, 3, 5} {
		got := r.Resolve(context.Background(), "espresso machine", count)
		if len(got) != count {
			t.Errorf("Resolve count=%d returned %d records", count, len(got))
		}
	}
}

func TestResolveClampsCount(t *testing.T) {
	r := NewResolver([]Adapter{PlaceholderAdapter{}}, quietLogger())

	if got := r.Resolve(context.Background(), "x", 0); len(got) != 1 {
		t.Errorf("count=0 returned %d records, want 1", len(got))
	}
	if got := r.Resolve(context.Background(), "x", -5); len(got) != 1 {
		t.Errorf("count=-5 returned %d records, want 1", len(got))
	}
	if got := r.Resolve(context.Background(), "x", 99); len(got) != 10 {
		t.Errorf("count=99 returned %d records, want 10", len(got))
	}
}

func TestResolveFallsThroughFailures(t *testing.T) {
	failing := &stubAdapter{name: "down", err: errors.New("boom")}
	working := &stubAdapter{name: "up", records: stubRecords("up", 5)}
	r := NewResolver([]Adapter{failing, working, PlaceholderAdapter{}}, quietLogger())

	got := r.Resolve(context.Background(), "desk lamp", 3)
	if len(got) != 3 {
		t.Fatalf("returned %d records, want 3", len(got))
	}
	for _, rec := range got {
		if rec.Source == SourcePlaceholder {
			t.Errorf("placeholder used although a working adapter had records")
		}
	}
	if failing.calls != 1 {
		t.Errorf("failing adapter called %d times, want 1", failing.calls)
	}
}

func TestResolveSurvivesPanickingAdapter(t *testing.T) {
	r := NewResolver([]Adapter{panicAdapter{}, PlaceholderAdapter{}}, quietLogger())

	got := r.Resolve(context.Background(), "desk lamp", 2)
	if len(got) != 2 {
		t.Fatalf("returned %d records, want 2", len(got))
	}
	for _, rec := range got {
		if rec.Source != SourcePlaceholder {
			t.Errorf("record source = %q, want placeholder", rec.Source)
		}
	}
}

func TestResolveMergesAcrossTiers(t *testing.T) {
	first := &stubAdapter{name: "first", records: stubRecords("first", 2)}
	second := &stubAdapter{name: "second", records: stubRecords("second", 5)}
	r := NewResolver([]Adapter{first, second, PlaceholderAdapter{}}, quietLogger())

	got := r.Resolve(context.Background(), "desk lamp", 4)
	if len(got) != 4 {
		t.Fatalf("returned %d records, want 4", len(got))
	}
	if got[0].URL != "https://example.com/first/0.jpg" {
		t.Errorf("priority order broken, first record %q", got[0].URL)
	}
	if got[2].URL != "https://example.com/second/0.jpg" {
		t.Errorf("expected second tier at index 2, got %q", got[2].URL)
	}
}

func TestResolveDeduplicatesByURL(t *testing.T) {
	dup := Record{URL: "https://example.com/same.jpg", Source: SourceStockAPI}
	first := &stubAdapter{name: "first", records: []Record{dup}}
	second := &stubAdapter{name: "second", records: []Record{dup, {URL: "https://example.com/other.jpg"}}}
	r := NewResolver([]Adapter{first, second, PlaceholderAdapter{}}, quietLogger())

	got := r.Resolve(context.Background(), "desk lamp", 2)
	if len(got) != 2 {
		t.Fatalf("returned %d records, want 2", len(got))
	}
	if got[0].URL == got[1].URL {
		t.Errorf("duplicate URL survived dedup: %q", got[0].URL)
	}
}

func TestResolveSkipsEmptyURLs(t *testing.T) {
	blank := &stubAdapter{name: "blank", records: []Record{{URL: ""}, {URL: ""}}}
	r := NewResolver([]Adapter{blank, PlaceholderAdapter{}}, quietLogger())

	got := r.Resolve(context.Background(), "desk lamp", 2)
	for _, rec := range got {
		if rec.URL == "" {
			t.Fatal("record with empty URL returned")
		}
	}
}

func TestResolveWithoutPlaceholderTierStillFills(t *testing.T) {
	r := NewResolver([]Adapter{&stubAdapter{name: "empty"}}, quietLogger())

	got := r.Resolve(context.Background(), "desk lamp", 3)
	if len(got) != 3 {
		t.Fatalf("returned %d records, want 3", len(got))
	}
}

func TestResolveNetworkOutageUsesLocalTiers(t *testing.T) {
	// A closed test server gives every network adapter a connection
	// refused. Keys are set so the stock adapters actually dial instead
	// of taking their keyless shortcut.
	srv := httptest.NewServer(http.NotFoundHandler())
	dead := srv.URL
	srv.Close()

	chain := []Adapter{
		NewScrapedSearchAdapterWithBaseURL(dead),
		NewPexelsAdapterWithBaseURL("test-key", dead),
		NewUnsplashAdapterWithBaseURL("test-key", dead),
		CuratedAdapter{},
		PlaceholderAdapter{},
	}
	r := NewResolver(chain, quietLogger())

	got := r.Resolve(context.Background(), "Sony WH-1000XM4 wireless headphones", 3)
	if len(got) != 3 {
		t.Fatalf("returned %d records, want 3", len(got))
	}
	for i, rec := range got {
		if rec.Source != SourceCurated && rec.Source != SourcePlaceholder {
			t.Errorf("record %d source = %q, want curated or placeholder", i, rec.Source)
		}
	}
}

func TestDefaultChainOrder(t *testing.T) {
	chain := DefaultChain("", "")
	want := []string{"scraped_search", "pexels", "unsplash", "curated", "placeholder"}
	if len(chain) != len(want) {
		t.Fatalf("chain has %d adapters, want %d", len(chain), len(want))
	}
	for i, a := range chain {
		if a.Name() != want[i] {
			t.Errorf("chain[%d] = %q, want %q", i, a.Name(), want[i])
		}
	}
}
