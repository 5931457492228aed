// Package images resolves representative product images for AI-generated
// gift ideas. A chain of source adapters is tried in fixed priority order
// (scraped web search, stock photo APIs, a curated lookup table, synthetic
// placeholders) until the requested number of images is found. The chain
// degrades in quality, never in cardinality: the terminal placeholder tier
// always fills the remainder.
package images

// Source identifies which adapter tier produced a Record.
type Source string

const (
	SourceScrapedSearch Source = "scraped_search"
	SourceStockAPI      Source = "stock_api"
	SourceCurated       Source = "curated"
	SourcePlaceholder   Source = "placeholder"
)

// Record is a single resolved image. Records are read-only once produced by
// an adapter; the resolver may drop a record but never rewrites its fields.
type Record struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail"`
	Title        string `json:"title"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Source       Source `json:"source"`
	Attribution  string `json:"photographer,omitempty"`
}
