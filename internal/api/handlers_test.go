package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rubysgifts/giftd/internal/advisor"
	"github.com/rubysgifts/giftd/internal/enrichment"
	"github.com/rubysgifts/giftd/internal/images"
	"github.com/rubysgifts/giftd/internal/questionnaire"
	"github.com/rubysgifts/giftd/internal/shopping"
	"github.com/rubysgifts/giftd/internal/storage"
)

type stubAdvisor struct {
	ideas []advisor.GiftIdea
	err   error
}

func (s *stubAdvisor) GenerateIdeas(context.Context, questionnaire.Answers) ([]advisor.GiftIdea, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ideas, nil
}

type memStore struct {
	results map[string]storage.Result
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{results: make(map[string]storage.Result)}
}

func (m *memStore) SaveResult(r storage.Result) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.results[r.ID] = r
	return nil
}

func (m *memStore) GetResult(id string) (storage.Result, error) {
	r, ok := m.results[id]
	if !ok {
		return storage.Result{}, storage.ErrNotFound
	}
	if time.Now().After(r.ExpiresAt) {
		delete(m.results, id)
		return storage.Result{}, storage.ErrExpired
	}
	return r, nil
}

func (m *memStore) RecentResults(limit int) ([]storage.Result, error) {
	var out []storage.Result
	for _, r := range m.results {
		out = append(out, r)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type stubPageResolver struct{}

func (stubPageResolver) Resolve(_ context.Context, rawTerms string, count int) []images.Record {
	return images.Placeholders(rawTerms, count)
}

func testIdeas() []advisor.GiftIdea {
	return []advisor.GiftIdea{
		{Title: "Weighted Blanket", Description: "cozy", ImageSearchTerms: "weighted blanket", ProductSearchQuery: "weighted blanket 6kg"},
		{Title: "Pottery Class", Description: "fun", ImageSearchTerms: "pottery wheel", ProductSearchQuery: "pottery voucher"},
		{Title: "Desk Plant", Description: "green", ImageSearchTerms: "succulent pot", ProductSearchQuery: "succulent planter"},
	}
}

func testDeps(adv GiftAdvisor, store ResultStore) Deps {
	logger := slog.New(slog.DiscardHandler)
	return Deps{
		Advisor:          adv,
		Enricher:         enrichment.New(stubPageResolver{}, shopping.NewBuilder(""), 2, logger),
		Store:            store,
		BaseURL:          "http://localhost:5000",
		ResultTTL:        time.Hour,
		Version:          "test",
		CORSOrigins:      []string{"http://localhost:3000"},
		OpenAIConfigured: true,
		Logger:           logger,
	}
}

func validBody() string {
	b, _ := json.Marshal(map[string]string{
		"call_them":           "Ruby",
		"relationship":        "best friend",
		"previous_gifts":      "books",
		"hate":                "clutter",
		"complaints":          "cold office",
		"complain_about_them": "always late",
		"budget":              "under 2000",
		"limitations":         "no perfume",
	})
	return string(b)
}

func postGifts(t *testing.T, handler http.Handler, body, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generate_gifts", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGenerateGifts(t *testing.T) {
	store := newMemStore()
	handler := NewRouter(testDeps(&stubAdvisor{ideas: testIdeas()}, store))

	rec := postGifts(t, handler, validBody(), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success || len(resp.GiftIdeas) != 3 {
		t.Fatalf("response = %+v", resp)
	}
	if len(resp.GiftIdeas[0].Images) != 2 {
		t.Errorf("idea has %d images, want 2", len(resp.GiftIdeas[0].Images))
	}
	if !strings.Contains(resp.GiftIdeas[0].AmazonLink, "tag=rubysgifts-21") {
		t.Errorf("amazon link = %q", resp.GiftIdeas[0].AmazonLink)
	}
	if len(resp.ResultID) != 8 {
		t.Errorf("result id = %q, want 8 chars", resp.ResultID)
	}
	if resp.ResultURL != "http://localhost:5000/results/"+resp.ResultID {
		t.Errorf("result url = %q", resp.ResultURL)
	}
	if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
		t.Errorf("timestamp = %q: %v", resp.Timestamp, err)
	}
	if _, ok := store.results[resp.ResultID]; !ok {
		t.Error("result not persisted")
	}
}

func TestGenerateGiftsWrongContentType(t *testing.T) {
	handler := NewRouter(testDeps(&stubAdvisor{ideas: testIdeas()}, newMemStore()))

	rec := postGifts(t, handler, validBody(), "text/plain")
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), codeInvalidContentType) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestGenerateGiftsMissingFields(t *testing.T) {
	handler := NewRouter(testDeps(&stubAdvisor{ideas: testIdeas()}, newMemStore()))

	rec := postGifts(t, handler, `{"call_them":"Ruby"}`, "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, codeInvalidInput) || !strings.Contains(body, "budget") {
		t.Errorf("body = %s", body)
	}
}

func TestGenerateGiftsAdvisorErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not configured", advisor.ErrNotConfigured, http.StatusServiceUnavailable, codeAIServiceError},
		{"auth", advisor.ErrAuth, http.StatusBadGateway, codeAIServiceError},
		{"rate limited", advisor.ErrRateLimited, http.StatusServiceUnavailable, codeAIRateLimited},
		{"timeout", advisor.ErrTimeout, http.StatusGatewayTimeout, codeAITimeout},
		{"malformed", advisor.ErrMalformedResponse, http.StatusBadGateway, codeInvalidAIResponse},
		{"incomplete", advisor.ErrIncompleteResponse, http.StatusBadGateway, codeIncompleteResponse},
		{"unknown", errors.New("boom"), http.StatusBadGateway, codeAIServiceError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewRouter(testDeps(&stubAdvisor{err: tt.err}, newMemStore()))
			rec := postGifts(t, handler, validBody(), "application/json")
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantCode) {
				t.Errorf("body = %s, want code %s", rec.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestGenerateGiftsStoreFailureStillServesIdeas(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("disk full")
	handler := NewRouter(testDeps(&stubAdvisor{ideas: testIdeas()}, store))

	rec := postGifts(t, handler, validBody(), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success || len(resp.GiftIdeas) != 3 {
		t.Fatalf("ideas lost on storage failure: %+v", resp)
	}
	if resp.ResultID != "" || resp.ResultURL != "" {
		t.Errorf("result link present despite storage failure: %+v", resp)
	}
}

func TestResultJSON(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	store.results["abc12345"] = storage.Result{
		ID:        "abc12345",
		Payload:   []byte(`{"success":true,"gift_ideas":[]}`),
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	handler := NewRouter(testDeps(&stubAdvisor{}, store))

	req := httptest.NewRequest(http.MethodGet, "/api/results/abc12345", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != `{"success":true,"gift_ideas":[]}` {
		t.Errorf("body = %s", got)
	}
}

func TestResultJSONNotFound(t *testing.T) {
	handler := NewRouter(testDeps(&stubAdvisor{}, newMemStore()))

	req := httptest.NewRequest(http.MethodGet, "/api/results/missing1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), codeResultNotFound) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestResultJSONExpired(t *testing.T) {
	store := newMemStore()
	store.results["gone1234"] = storage.Result{
		ID:        "gone1234",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	handler := NewRouter(testDeps(&stubAdvisor{}, store))

	req := httptest.NewRequest(http.MethodGet, "/api/results/gone1234", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), codeResultExpired) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestResultPage(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	store.results["abc12345"] = storage.Result{
		ID:        "abc12345",
		Payload:   []byte(`{"success":true,"gift_ideas":[]}`),
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	handler := NewRouter(testDeps(&stubAdvisor{}, store))

	req := httptest.NewRequest(http.MethodGet, "/results/abc12345", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `window.RESULT_ID = "abc12345"`) {
		t.Errorf("page missing result id:\n%s", rec.Body.String())
	}
}

func TestResultPageNotFound(t *testing.T) {
	handler := NewRouter(testDeps(&stubAdvisor{}, newMemStore()))

	req := httptest.NewRequest(http.MethodGet, "/results/missing1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	handler := NewRouter(testDeps(&stubAdvisor{}, newMemStore()))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "healthy" || body["openai_configured"] != true {
		t.Errorf("body = %v", body)
	}
}

func TestTestOpenAI(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		deps := testDeps(&stubAdvisor{}, newMemStore())
		deps.OpenAIConfigured = false
		handler := NewRouter(deps)

		req := httptest.NewRequest(http.MethodGet, "/test_openai", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("probe failure", func(t *testing.T) {
		deps := testDeps(&stubAdvisor{}, newMemStore())
		deps.Probe = func(context.Context) error { return errors.New("bad key") }
		handler := NewRouter(deps)

		req := httptest.NewRequest(http.MethodGet, "/test_openai", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("probe success", func(t *testing.T) {
		deps := testDeps(&stubAdvisor{}, newMemStore())
		deps.Probe = func(context.Context) error { return nil }
		handler := NewRouter(deps)

		req := httptest.NewRequest(http.MethodGet, "/test_openai", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestCORS(t *testing.T) {
	handler := NewRouter(testDeps(&stubAdvisor{}, newMemStore()))

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/generate_gifts", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("preflight status = %d", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("allow-origin = %q", got)
		}
	})

	t.Run("unlisted origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("allow-origin = %q for unlisted origin", got)
		}
	})
}
