// Package api implements the HTTP surface: gift generation, shareable
// results, and operational endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rubysgifts/giftd/internal/advisor"
	"github.com/rubysgifts/giftd/internal/enrichment"
	"github.com/rubysgifts/giftd/internal/questionnaire"
	"github.com/rubysgifts/giftd/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Client-facing error codes.
const (
	codeInvalidContentType = "INVALID_CONTENT_TYPE"
	codeInvalidInput       = "INVALID_INPUT"
	codeAIServiceError     = "AI_SERVICE_ERROR"
	codeAITimeout          = "AI_TIMEOUT"
	codeAIRateLimited      = "AI_RATE_LIMITED"
	codeInvalidAIResponse  = "INVALID_AI_RESPONSE"
	codeIncompleteResponse = "INCOMPLETE_AI_RESPONSE"
	codeResultNotFound     = "RESULT_NOT_FOUND"
	codeResultExpired      = "RESULT_EXPIRED"
	codeInternalError      = "INTERNAL_ERROR"
)

// GiftAdvisor abstracts idea generation for handler tests.
type GiftAdvisor interface {
	GenerateIdeas(ctx context.Context, answers questionnaire.Answers) ([]advisor.GiftIdea, error)
}

// ResultStore abstracts result persistence for handler tests.
type ResultStore interface {
	SaveResult(r storage.Result) error
	GetResult(id string) (storage.Result, error)
	RecentResults(limit int) ([]storage.Result, error)
}

// Deps bundles everything the handlers need.
type Deps struct {
	Advisor   GiftAdvisor
	Enricher  *enrichment.Enricher
	Store     ResultStore
	BaseURL   string
	ResultTTL time.Duration
	Version   string

	// CORSOrigins is the allowlist for browser requests.
	CORSOrigins []string

	// OpenAIConfigured reports whether a completion key is present.
	OpenAIConfigured bool

	// Probe verifies upstream connectivity for /test_openai. Optional.
	Probe func(ctx context.Context) error

	Logger *slog.Logger
}

// NewRouter assembles the chi router with all routes and middleware.
func NewRouter(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(corsMiddleware(deps.CORSOrigins))

	r.Get("/health", handleHealth(deps))
	r.Get("/test_openai", handleTestOpenAI(deps))
	r.Post("/generate_gifts", handleGenerateGifts(deps))
	r.Get("/results/{id}", handleResultPage(deps))
	r.Get("/api/results/{id}", handleResultJSON(deps))

	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":            "healthy",
			"version":           deps.Version,
			"openai_configured": deps.OpenAIConfigured,
			"timestamp":         time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func handleTestOpenAI(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.OpenAIConfigured {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"success": false,
				"error":   "OpenAI API key not configured",
			})
			return
		}
		if deps.Probe == nil {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "API key configured"})
			return
		}
		if err := deps.Probe(r.Context()); err != nil {
			deps.Logger.Error("openai probe failed", "error", err)
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"success": false,
				"error":   "OpenAI API connection failed",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "OpenAI API connection successful"})
	}
}

type generateResponse struct {
	Success   bool                      `json:"success"`
	GiftIdeas []enrichment.EnrichedIdea `json:"gift_ideas"`
	ResultID  string                    `json:"result_id,omitempty"`
	ResultURL string                    `json:"result_url,omitempty"`
	Timestamp string                    `json:"timestamp"`
}

func handleGenerateGifts(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			httpError(w, http.StatusUnsupportedMediaType, codeInvalidContentType, "Content-Type must be application/json")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var answers questionnaire.Answers
		if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
			httpError(w, http.StatusBadRequest, codeInvalidInput, "invalid JSON body: %v", err)
			return
		}

		if err := questionnaire.Validate(answers); err != nil {
			httpError(w, http.StatusBadRequest, codeInvalidInput, "%v", err)
			return
		}
		answers = questionnaire.SanitizeAll(answers)
		if err := questionnaire.Validate(answers); err != nil {
			// Sanitization can blank out an answer that was pure injection.
			httpError(w, http.StatusBadRequest, codeInvalidInput, "%v", err)
			return
		}

		start := time.Now()
		ideas, err := deps.Advisor.GenerateIdeas(r.Context(), answers)
		if err != nil {
			status, code, msg := classifyAdvisorError(err)
			deps.Logger.Error("gift generation failed", "error", err, "code", code)
			httpError(w, status, code, "%s", msg)
			return
		}

		enriched := deps.Enricher.Enrich(r.Context(), ideas)
		resp := generateResponse{
			Success:   true,
			GiftIdeas: enriched,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		if deps.Store != nil {
			id := newResultID()
			payload, err := json.Marshal(resp)
			if err == nil {
				now := time.Now()
				err = deps.Store.SaveResult(storage.Result{
					ID:        id,
					Payload:   payload,
					CreatedAt: now,
					ExpiresAt: now.Add(deps.ResultTTL),
				})
			}
			if err != nil {
				// Storage trouble should not cost the user their ideas.
				deps.Logger.Error("saving result failed", "error", err, "result_id", id)
			} else {
				resp.ResultID = id
				resp.ResultURL = strings.TrimRight(deps.BaseURL, "/") + "/results/" + id
			}
		}

		deps.Logger.Info("gift ideas generated",
			"ideas", len(enriched), "result_id", resp.ResultID, "duration", time.Since(start))
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleResultJSON(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		result, err := deps.Store.GetResult(id)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			httpError(w, http.StatusNotFound, codeResultNotFound, "no result with id %s", id)
			return
		case errors.Is(err, storage.ErrExpired):
			// Expired links look the same as unknown ones to the client,
			// only the code differs.
			httpError(w, http.StatusNotFound, codeResultExpired, "result %s has expired", id)
			return
		case err != nil:
			deps.Logger.Error("fetching result failed", "error", err, "result_id", id)
			httpError(w, http.StatusInternalServerError, codeInternalError, "failed to load result")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(result.Payload)
	}
}

// classifyAdvisorError maps upstream failures onto HTTP statuses and client
// error codes.
func classifyAdvisorError(err error) (int, string, string) {
	switch {
	case errors.Is(err, advisor.ErrNotConfigured):
		return http.StatusServiceUnavailable, codeAIServiceError, "AI service is not configured"
	case errors.Is(err, advisor.ErrAuth):
		return http.StatusBadGateway, codeAIServiceError, "AI service rejected the configured credentials"
	case errors.Is(err, advisor.ErrRateLimited):
		return http.StatusServiceUnavailable, codeAIRateLimited, "AI service is rate limited, please try again shortly"
	case errors.Is(err, advisor.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, codeAITimeout, "AI service request timed out, please try again"
	case errors.Is(err, advisor.ErrMalformedResponse):
		return http.StatusBadGateway, codeInvalidAIResponse, "AI service returned an unusable response"
	case errors.Is(err, advisor.ErrIncompleteResponse):
		return http.StatusBadGateway, codeIncompleteResponse, "AI service returned an incomplete response"
	default:
		return http.StatusBadGateway, codeAIServiceError, "AI service error"
	}
}

// newResultID derives a short shareable ID from a UUID. Eight hex characters
// keep links friendly while leaving collisions vanishingly unlikely at this
// traffic level.
func newResultID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, code string, format string, args ...any) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   fmt.Sprintf(format, args...),
		"code":    code,
	})
}
