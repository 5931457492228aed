package images

import (
	"context"
	"fmt"
	"hash/fnv"
)

const placeholderSeedSpace = 1000

// stableHash returns a stable, well-distributed hash of s. FNV-1a is enough:
// the contract is reproducibility, not cryptographic quality.
func stableHash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// Placeholders generates exactly count deterministic filler images for the
// given seed input. Repeated calls with the same arguments yield identical
// records in identical order. No network I/O, never fails.
func Placeholders(seedInput string, count int) []Record {
	records := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		seed := stableHash(fmt.Sprintf("%s-%d", seedInput, i)) % placeholderSeedSpace
		records = append(records, Record{
			URL:          fmt.Sprintf("https://picsum.photos/seed/gift-%d/400/400", seed),
			ThumbnailURL: fmt.Sprintf("https://picsum.photos/seed/gift-%d/200/200", seed),
			Title:        fmt.Sprintf("%s - placeholder %d", seedInput, i+1),
			Width:        400,
			Height:       400,
			Source:       SourcePlaceholder,
		})
	}
	return records
}

// PlaceholderAdapter is the terminal tier of the fallback chain. It always
// succeeds and always returns exactly the requested count.
type PlaceholderAdapter struct{}

func (PlaceholderAdapter) Name() string { return "placeholder" }

func (PlaceholderAdapter) Fetch(_ context.Context, query string, count int) ([]Record, error) {
	return Placeholders(query, count), nil
}
