package images

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestPlaceholdersDeterministic(t *testing.T) {
	first := Placeholders("espresso machine", 4)
	second := Placeholders("espresso machine", 4)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated calls differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestPlaceholdersCount(t *testing.T) {
	for _, count := range []int{1, 3, 10} {
		got := Placeholders("anything", count)
		if len(got) != count {
			t.Errorf("Placeholders count=%d returned %d records", count, len(got))
		}
	}
}

func TestPlaceholdersDistinctWithinSet(t *testing.T) {
	records := Placeholders("cozy blanket", 5)
	seen := make(map[string]struct{})
	for _, r := range records {
		if _, dup := seen[r.URL]; dup {
			t.Errorf("duplicate placeholder URL %q", r.URL)
		}
		seen[r.URL] = struct{}{}
		if r.Source != SourcePlaceholder {
			t.Errorf("record source = %q, want %q", r.Source, SourcePlaceholder)
		}
		if !strings.HasPrefix(r.URL, "https://picsum.photos/seed/gift-") {
			t.Errorf("unexpected placeholder URL %q", r.URL)
		}
	}
}

func TestPlaceholderAdapterNeverFails(t *testing.T) {
	records, err := PlaceholderAdapter{}.Fetch(context.Background(), "", 3)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Fetch returned %d records, want 3", len(records))
	}
}
