package images

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	minCount = 1
	maxCount = 10
)

// Resolver drives an ordered adapter chain until the requested number of
// unique images is collected. Resolve never fails and never returns fewer
// records than asked for: any shortfall after the last adapter is filled
// with deterministic placeholders.
type Resolver struct {
	chain  []Adapter
	logger *slog.Logger
}

func NewResolver(chain []Adapter, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{chain: chain, logger: logger}
}

// DefaultChain builds the standard adapter priority order. Stock API keys
// may be empty; the corresponding adapters then operate keyless.
func DefaultChain(pexelsKey, unsplashKey string) []Adapter {
	return []Adapter{
		NewScrapedSearchAdapter(),
		NewPexelsAdapter(pexelsKey),
		NewUnsplashAdapter(unsplashKey),
		CuratedAdapter{},
		PlaceholderAdapter{},
	}
}

// Resolve returns exactly count records for the raw search phrase. The count
// is clamped to [1, 10]. Adapter failures, including panics, are logged and
// treated as empty results; duplicates by URL are dropped across tiers.
func (r *Resolver) Resolve(ctx context.Context, rawTerms string, count int) []Record {
	if count < minCount {
		count = minCount
	}
	if count > maxCount {
		count = maxCount
	}

	query := Normalize(rawTerms)
	start := time.Now()

	var out []Record
	seen := make(map[string]struct{})
	for _, a := range r.chain {
		if len(out) >= count {
			break
		}
		records, err := r.safeFetch(ctx, a, query, count-len(out))
		if err != nil {
			r.logger.Warn("image adapter failed",
				"adapter", a.Name(), "query", query, "error", err)
			continue
		}
		added := 0
		for _, rec := range records {
			if len(out) >= count {
				break
			}
			if rec.URL == "" {
				continue
			}
			if _, dup := seen[rec.URL]; dup {
				continue
			}
			seen[rec.URL] = struct{}{}
			out = append(out, rec)
			added++
		}
		if added > 0 {
			r.logger.Debug("image adapter contributed",
				"adapter", a.Name(), "query", query, "added", added)
		}
	}

	// Reached only if the chain omits the placeholder tier.
	for len(out) < count {
		fill := Placeholders(query, count-len(out))
		for _, rec := range fill {
			if _, dup := seen[rec.URL]; dup {
				rec.URL = fmt.Sprintf("%s&n=%d", rec.URL, len(out))
			}
			seen[rec.URL] = struct{}{}
			out = append(out, rec)
		}
	}

	r.logger.Debug("resolved images",
		"query", query, "count", len(out), "duration", time.Since(start))
	return out[:count]
}

// safeFetch shields the resolver from a misbehaving adapter: a panic inside
// Fetch is converted into an ordinary error.
func (r *Resolver) safeFetch(ctx context.Context, a Adapter, query string, count int) (records []Record, err error) {
	defer func() {
		if p := recover(); p != nil {
			records = nil
			err = fmt.Errorf("adapter panic: %v", p)
		}
	}()
	return a.Fetch(ctx, query, count)
}
