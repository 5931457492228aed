// Package shopping builds affiliate-tagged store search links for gift ideas.
package shopping

import (
	"fmt"
	"net/url"
	"strings"
)

const defaultAffiliateTag = "rubysgifts-21"

// Links holds one search URL per supported storefront.
type Links struct {
	Amazon   string `json:"amazon"`
	Flipkart string `json:"flipkart"`
	Myntra   string `json:"myntra"`
	Ajio     string `json:"ajio"`
}

// Builder renders store links with a configurable affiliate tag.
type Builder struct {
	affiliateTag string
}

func NewBuilder(affiliateTag string) *Builder {
	if affiliateTag == "" {
		affiliateTag = defaultAffiliateTag
	}
	return &Builder{affiliateTag: affiliateTag}
}

// AmazonLink returns an affiliate-tagged Amazon India search URL.
func (b *Builder) AmazonLink(query string) string {
	return fmt.Sprintf(
		"https://www.amazon.in/s?k=%s&tag=%s&linkCode=ur2&camp=3638&creative=24630",
		url.QueryEscape(normalizeQuery(query)), url.QueryEscape(b.affiliateTag))
}

// Build returns search links for every supported storefront.
func (b *Builder) Build(query string) Links {
	escaped := url.QueryEscape(normalizeQuery(query))
	return Links{
		Amazon:   b.AmazonLink(query),
		Flipkart: "https://www.flipkart.com/search?q=" + escaped,
		Myntra:   "https://www.myntra.com/" + strings.ReplaceAll(normalizeQuery(query), " ", "-"),
		Ajio:     "https://www.ajio.com/search/?text=" + escaped,
	}
}

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(q)), " ")
}
