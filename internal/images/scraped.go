package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	scrapedTimeout   = 10 * time.Second
	scrapedUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// queryRewordings are appended to the query in sequence until enough
// candidates accumulate; the later variants bias results toward shopping
// pages with clean product photography.
var queryRewordings = []string{"", " buy", " shopping", " product"}

// lowQualityFragments mark URLs that are almost never real product photos.
var lowQualityFragments = []string{
	"icon", "logo", "avatar", "sprite", "favicon", ".svg", "placeholder",
}

// commerceDomains are ordered first among candidates: store listings tend to
// photograph products on clean backgrounds.
var commerceDomains = []string{
	"amazon.", "flipkart.", "myntra.", "ajio.", "etsy.", "ebay.",
}

// ScrapedSearchAdapter queries a general web search engine's image surface
// and extracts candidate image URLs from the raw result HTML. It is the
// highest-relevance, lowest-reliability tier of the chain.
type ScrapedSearchAdapter struct {
	baseURL    string
	httpClient *http.Client
}

// NewScrapedSearchAdapter returns an adapter scraping Bing image search.
func NewScrapedSearchAdapter() *ScrapedSearchAdapter {
	return NewScrapedSearchAdapterWithBaseURL("https://www.bing.com/images/search")
}

// NewScrapedSearchAdapterWithBaseURL points the adapter at a custom search
// endpoint (used by tests).
func NewScrapedSearchAdapterWithBaseURL(baseURL string) *ScrapedSearchAdapter {
	return &ScrapedSearchAdapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: scrapedTimeout},
	}
}

func (a *ScrapedSearchAdapter) Name() string { return "scraped_search" }

// Fetch tries the query plus each reworded variant in sequence, keeping the
// first count candidates that pass the quality filter. A variant that fails
// does not abort the remaining variants; an error is reported only when no
// variant produced anything.
func (a *ScrapedSearchAdapter) Fetch(ctx context.Context, query string, count int) ([]Record, error) {
	var out []Record
	seen := make(map[string]struct{})
	var lastErr error

	for _, suffix := range queryRewordings {
		if len(out) >= count {
			break
		}
		candidates, err := a.search(ctx, query+suffix)
		if err != nil {
			lastErr = err
			continue
		}
		for _, c := range candidates {
			if len(out) >= count {
				break
			}
			if _, dup := seen[c.URL]; dup {
				continue
			}
			seen[c.URL] = struct{}{}
			out = append(out, c)
		}
	}

	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (a *ScrapedSearchAdapter) search(ctx context.Context, query string) ([]Record, error) {
	u := a.baseURL + "?q=" + url.QueryEscape(query) + "&count=35"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("User-Agent", scrapedUserAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image search: unexpected status %d", resp.StatusCode)
	}

	candidates := extractCandidates(resp.Body)
	filtered := candidates[:0]
	for _, c := range candidates {
		if acceptableImageURL(c.URL) {
			filtered = append(filtered, c)
		}
	}
	orderCommerceFirst(filtered)
	return filtered, nil
}

// tileMeta mirrors the JSON blob Bing embeds in each result tile's "m"
// attribute. Only the fields we consume are declared.
type tileMeta struct {
	MediaURL string `json:"murl"`
	ThumbURL string `json:"turl"`
	Title    string `json:"t"`
}

// extractCandidates walks the result HTML and collects the per-tile metadata
// blobs. Tokenizer errors terminate the walk but never propagate: whatever
// was parsed up to that point is returned.
func extractCandidates(body io.Reader) []Record {
	var records []Record
	tok := html.NewTokenizer(body)
	for {
		tt := tok.Next()
		if tt == html.ErrorToken {
			return records
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := tok.TagName()
		if string(name) != "a" || !hasAttr {
			continue
		}
		var meta string
		isResultTile := false
		for {
			key, val, more := tok.TagAttr()
			switch string(key) {
			case "class":
				if strings.Contains(string(val), "iusc") {
					isResultTile = true
				}
			case "m":
				meta = string(val)
			}
			if !more {
				break
			}
		}
		if !isResultTile || meta == "" {
			continue
		}
		var m tileMeta
		if err := json.Unmarshal([]byte(meta), &m); err != nil || m.MediaURL == "" {
			continue
		}
		records = append(records, Record{
			URL:          m.MediaURL,
			ThumbnailURL: m.ThumbURL,
			Title:        m.Title,
			Source:       SourceScrapedSearch,
		})
	}
}

// acceptableImageURL rejects URLs that match known icon/logo/decoration
// patterns and anything that is not plain http(s).
func acceptableImageURL(raw string) bool {
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	for _, frag := range lowQualityFragments {
		if strings.Contains(lower, frag) {
			return false
		}
	}
	return true
}

// orderCommerceFirst stably moves candidates hosted on known e-commerce
// domains to the front of the slice.
func orderCommerceFirst(records []Record) {
	var commerce, rest []Record
	for _, r := range records {
		if fromCommerceDomain(r.URL) {
			commerce = append(commerce, r)
		} else {
			rest = append(rest, r)
		}
	}
	copy(records, commerce)
	copy(records[len(commerce):], rest)
}

func fromCommerceDomain(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range commerceDomains {
		if strings.Contains(host, d) {
			return true
		}
	}
	return false
}
