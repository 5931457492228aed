// Package enrichment decorates raw gift ideas with resolved images and
// store links before they are returned to a client or persisted.
package enrichment

import (
	"context"
	"log/slog"
	"time"

	"github.com/rubysgifts/giftd/internal/advisor"
	"github.com/rubysgifts/giftd/internal/images"
	"github.com/rubysgifts/giftd/internal/shopping"
)

const defaultImagesPerIdea = 3

// ImageResolver is satisfied by both images.Resolver and
// images.CachedResolver.
type ImageResolver interface {
	Resolve(ctx context.Context, rawTerms string, count int) []images.Record
}

// EnrichedIdea is a gift idea plus everything the results page renders.
type EnrichedIdea struct {
	advisor.GiftIdea
	Images        []images.Record `json:"images"`
	AmazonLink    string          `json:"amazon_link"`
	ShoppingLinks shopping.Links  `json:"shopping_links"`
}

// Enricher applies image resolution and link building to idea lists.
type Enricher struct {
	resolver      ImageResolver
	links         *shopping.Builder
	imagesPerIdea int
	logger        *slog.Logger
}

func New(resolver ImageResolver, links *shopping.Builder, imagesPerIdea int, logger *slog.Logger) *Enricher {
	if imagesPerIdea <= 0 {
		imagesPerIdea = defaultImagesPerIdea
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		resolver:      resolver,
		links:         links,
		imagesPerIdea: imagesPerIdea,
		logger:        logger,
	}
}

// Enrich resolves images and builds store links for every idea. The idea
// title backs any search field the model left blank, so enrichment always
// has a usable query.
func (e *Enricher) Enrich(ctx context.Context, ideas []advisor.GiftIdea) []EnrichedIdea {
	start := time.Now()
	out := make([]EnrichedIdea, 0, len(ideas))
	for _, idea := range ideas {
		imageTerms := idea.ImageSearchTerms
		if imageTerms == "" {
			imageTerms = idea.Title
		}
		productQuery := idea.ProductSearchQuery
		if productQuery == "" {
			productQuery = idea.Title
		}

		out = append(out, EnrichedIdea{
			GiftIdea:      idea,
			Images:        e.resolver.Resolve(ctx, imageTerms, e.imagesPerIdea),
			AmazonLink:    e.links.AmazonLink(productQuery),
			ShoppingLinks: e.links.Build(productQuery),
		})
	}
	e.logger.Debug("enriched ideas", "count", len(out), "duration", time.Since(start))
	return out
}
