package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rubysgifts/giftd/internal/questionnaire"
)

// expectedIdeas is what the prompt asks for. A response with a different
// count is still served; the mismatch is only logged.
const expectedIdeas = 3

// GiftIdea is one recommendation as returned by the model.
type GiftIdea struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	Starter            string `json:"starter"`
	Reaction           string `json:"reaction"`
	ImageSearchTerms   string `json:"image_search_terms"`
	ProductSearchQuery string `json:"product_search_query"`
	PriceRange         string `json:"price_range"`
}

// Completer abstracts the chat client so tests can substitute canned output.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Advisor orchestrates prompt construction, the model call, and response
// parsing.
type Advisor struct {
	client Completer
	logger *slog.Logger
}

func New(client Completer, logger *slog.Logger) *Advisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Advisor{client: client, logger: logger}
}

// GenerateIdeas produces gift ideas for the given sanitized answers.
func (a *Advisor) GenerateIdeas(ctx context.Context, answers questionnaire.Answers) ([]GiftIdea, error) {
	content, err := a.client.Complete(ctx, systemPrompt, BuildPrompt(answers))
	if err != nil {
		return nil, err
	}

	ideas, err := parseIdeas(content)
	if err != nil {
		a.logger.Error("unparseable model response", "error", err, "length", len(content))
		return nil, err
	}
	if len(ideas) != expectedIdeas {
		a.logger.Warn("unexpected idea count", "got", len(ideas), "want", expectedIdeas)
	}
	return ideas, nil
}

// parseIdeas extracts gift ideas from the raw model output. Models sometimes
// wrap JSON in markdown code fences; those are stripped before decoding.
func parseIdeas(content string) ([]GiftIdea, error) {
	trimmed := stripCodeFence(content)

	var parsed struct {
		GiftIdeas []GiftIdea `json:"gift_ideas"`
	}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.GiftIdeas) == 0 {
		return nil, fmt.Errorf("%w: no gift ideas in response", ErrMalformedResponse)
	}

	// Every idea must carry the full set of display fields; a partially
	// filled idea would render as a broken card.
	for i, idea := range parsed.GiftIdeas {
		switch {
		case idea.Title == "":
			return nil, fmt.Errorf("%w: idea %d missing title", ErrIncompleteResponse, i)
		case idea.Description == "":
			return nil, fmt.Errorf("%w: idea %d missing description", ErrIncompleteResponse, i)
		case idea.Starter == "":
			return nil, fmt.Errorf("%w: idea %d missing starter", ErrIncompleteResponse, i)
		case idea.Reaction == "":
			return nil, fmt.Errorf("%w: idea %d missing reaction", ErrIncompleteResponse, i)
		}
	}
	return parsed.GiftIdeas, nil
}

func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
