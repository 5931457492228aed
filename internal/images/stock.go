package images

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const stockTimeout = 8 * time.Second

// PexelsAdapter serves the stock photo tier from the Pexels search API when
// an API key is configured. Without a key it degrades to deterministic
// pseudo-search URLs on the Pexels CDN, which keeps the tier usable in
// development and in tests without network credentials.
type PexelsAdapter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewPexelsAdapter(apiKey string) *PexelsAdapter {
	return NewPexelsAdapterWithBaseURL(apiKey, "https://api.pexels.com/v1")
}

func NewPexelsAdapterWithBaseURL(apiKey, baseURL string) *PexelsAdapter {
	return &PexelsAdapter{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: stockTimeout},
	}
}

func (a *PexelsAdapter) Name() string { return "pexels" }

func (a *PexelsAdapter) Fetch(ctx context.Context, query string, count int) ([]Record, error) {
	if a.apiKey == "" {
		return a.pseudoSearch(query, count), nil
	}

	u := fmt.Sprintf("%s/search?query=%s&per_page=%d", a.baseURL, url.QueryEscape(query), count)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating pexels request: %w", err)
	}
	req.Header.Set("Authorization", a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pexels search: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Photos []struct {
			Width        int    `json:"width"`
			Height       int    `json:"height"`
			Photographer string `json:"photographer"`
			Alt          string `json:"alt"`
			Src          struct {
				Medium string `json:"medium"`
				Tiny   string `json:"tiny"`
			} `json:"src"`
		} `json:"photos"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding pexels response: %w", err)
	}

	records := make([]Record, 0, len(body.Photos))
	for _, p := range body.Photos {
		if p.Src.Medium == "" {
			continue
		}
		records = append(records, Record{
			URL:          p.Src.Medium,
			ThumbnailURL: p.Src.Tiny,
			Title:        p.Alt,
			Width:        p.Width,
			Height:       p.Height,
			Source:       SourceStockAPI,
			Attribution:  p.Photographer,
		})
	}
	return records, nil
}

// pseudoSearch synthesizes plausible Pexels CDN URLs from a stable hash of
// the query. Some of the derived photo IDs will not exist; the frontend
// handles broken images with its own onerror fallback, and the placeholder
// tier below this one guarantees cardinality either way.
func (a *PexelsAdapter) pseudoSearch(query string, count int) []Record {
	records := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		id := 1000000 + stableHash(fmt.Sprintf("%s-%d", query, i))%9000000
		records = append(records, Record{
			URL:          fmt.Sprintf("https://images.pexels.com/photos/%d/pexels-photo-%d.jpeg?auto=compress&cs=tinysrgb&w=400&h=400&dpr=1", id, id),
			ThumbnailURL: fmt.Sprintf("https://images.pexels.com/photos/%d/pexels-photo-%d.jpeg?auto=compress&cs=tinysrgb&w=200&h=200&dpr=1", id, id),
			Title:        query,
			Width:        400,
			Height:       400,
			Source:       SourceStockAPI,
		})
	}
	return records
}

// UnsplashAdapter is the second stock photo tier, backed by the Unsplash
// search API. Like the Pexels tier it falls back to keyless deterministic
// URLs when no access key is configured.
type UnsplashAdapter struct {
	accessKey  string
	baseURL    string
	httpClient *http.Client
}

func NewUnsplashAdapter(accessKey string) *UnsplashAdapter {
	return NewUnsplashAdapterWithBaseURL(accessKey, "https://api.unsplash.com")
}

func NewUnsplashAdapterWithBaseURL(accessKey, baseURL string) *UnsplashAdapter {
	return &UnsplashAdapter{
		accessKey:  accessKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: stockTimeout},
	}
}

func (a *UnsplashAdapter) Name() string { return "unsplash" }

func (a *UnsplashAdapter) Fetch(ctx context.Context, query string, count int) ([]Record, error) {
	if a.accessKey == "" {
		return a.pseudoSearch(query, count), nil
	}

	u := fmt.Sprintf("%s/search/photos?query=%s&per_page=%d&client_id=%s",
		a.baseURL, url.QueryEscape(query), count, url.QueryEscape(a.accessKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating unsplash request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unsplash search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unsplash search: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Results []struct {
			Width       int    `json:"width"`
			Height      int    `json:"height"`
			Description string `json:"alt_description"`
			URLs        struct {
				Regular string `json:"regular"`
				Thumb   string `json:"thumb"`
			} `json:"urls"`
			User struct {
				Name string `json:"name"`
			} `json:"user"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding unsplash response: %w", err)
	}

	records := make([]Record, 0, len(body.Results))
	for _, r := range body.Results {
		if r.URLs.Regular == "" {
			continue
		}
		records = append(records, Record{
			URL:          r.URLs.Regular,
			ThumbnailURL: r.URLs.Thumb,
			Title:        r.Description,
			Width:        r.Width,
			Height:       r.Height,
			Source:       SourceStockAPI,
			Attribution:  r.User.Name,
		})
	}
	return records, nil
}

func (a *UnsplashAdapter) pseudoSearch(query string, count int) []Record {
	records := make([]Record, 0, count)
	escaped := url.QueryEscape(query)
	for i := 0; i < count; i++ {
		sig := stableHash(fmt.Sprintf("%s-%d", query, i))
		records = append(records, Record{
			URL:          fmt.Sprintf("https://source.unsplash.com/400x400/?%s&sig=%d", escaped, sig),
			ThumbnailURL: fmt.Sprintf("https://source.unsplash.com/200x200/?%s&sig=%d", escaped, sig),
			Title:        query,
			Width:        400,
			Height:       400,
			Source:       SourceStockAPI,
		})
	}
	return records
}
