package images

import "context"

// Adapter wraps exactly one external image source behind a uniform fetch
// contract. Implementations must catch every internal failure (network
// error, bad status, parse error) and report it as an error return; they
// must never panic. The resolver treats an error the same as an empty
// result, which is what keeps the fallback chain safe to drive blindly.
type Adapter interface {
	// Name identifies the adapter in logs.
	Name() string

	// Fetch returns up to count records for the query. A nil slice with a
	// nil error means the source had nothing for this query.
	Fetch(ctx context.Context, query string, count int) ([]Record, error)
}
