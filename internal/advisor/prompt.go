package advisor

import (
	"fmt"
	"strings"

	"github.com/rubysgifts/giftd/internal/questionnaire"
)

// systemPrompt pins the response contract: exactly three ideas, valid JSON,
// plus the search fields downstream enrichment depends on.
const systemPrompt = `You are a world-class gift psychology expert. Apply step-by-step analytical thinking and respond with valid JSON containing exactly 3 gift ideas in this format: {"gift_ideas": [{"title": "Creative gift name", "description": "Detailed psychological reasoning", "starter": "Presentation strategy", "reaction": "Authentic emotional response", "image_search_terms": "2-4 concrete words describing the physical product", "product_search_query": "short query a shopper would type into a store", "price_range": "approximate price range within the budget"}]}`

// BuildPrompt renders the chain-of-thought user prompt from sanitized
// questionnaire answers.
func BuildPrompt(a questionnaire.Answers) string {
	var b strings.Builder

	b.WriteString("This is very important for strengthening their relationship. You'd better provide exceptional, thoughtful recommendations.\n\n")
	b.WriteString("You are a world-class gift psychology expert with deep understanding of human relationships and gifting science. Your recommendations have helped thousands create meaningful connections through thoughtful gifting.\n\n")

	b.WriteString("RECIPIENT ANALYSIS:\n")
	fmt.Fprintf(&b, "- What they call them: %s\n", a["call_them"])
	fmt.Fprintf(&b, "- Relationship: %s\n", a["relationship"])
	fmt.Fprintf(&b, "- Previous gifts given: %s\n", a["previous_gifts"])
	fmt.Fprintf(&b, "- Things they hate: %s\n", a["hate"])
	fmt.Fprintf(&b, "- What they complain about: %s\n", a["complaints"])
	fmt.Fprintf(&b, "- Their quirks/habits: %s\n", a["complain_about_them"])
	fmt.Fprintf(&b, "- Budget: %s\n", a["budget"])
	fmt.Fprintf(&b, "- Limitations/constraints: %s\n\n", a["limitations"])

	b.WriteString(`STEP-BY-STEP ANALYSIS (Think through this systematically):

Step 1: RELATIONSHIP CONTEXT ANALYSIS
First, analyze the relationship type and emotional closeness. Consider:
- What gift-giving approach fits this relationship level?
- Are they seeking to maintain, deepen, or celebrate this relationship?
- What are the cultural/social expectations for this relationship type?

Step 2: PERSONALITY & PREFERENCE MAPPING
Based on what they complain about and their quirks, identify:
- Their core personality traits and values
- Hidden needs or desires they might not express directly
- Lifestyle patterns and daily pain points
- What would genuinely improve their quality of life?

Step 3: GIFT PSYCHOLOGY APPLICATION
Apply proven gift psychology principles:
- Prioritize experiences over material items when appropriate (builds stronger relationships)
- Balance personalization with versatility (avoid over-specific gifts)
- Consider gifts that solve problems they complain about
- Avoid anything that contradicts their stated dislikes
- Factor in the "effort perception" - gifts should feel thoughtfully chosen

Step 4: TREND & CONTEXT AWARENESS
Consider current trends and cultural context:
- What's popular and well-reviewed in relevant categories?
- Are there seasonal considerations?
- What would feel fresh and current vs outdated?

Now, generate 3 exceptional gift ideas that demonstrate deep thoughtfulness:

REQUIREMENTS:
- Each gift should address specific insights from your analysis
- Vary the types: include at least one experience-based option
- Explain the psychological reasoning behind each choice
- Provide specific, actionable presentation advice
- Predict authentic emotional responses
- For each idea include image_search_terms naming the concrete physical product, a product_search_query a shopper would type into an online store, and a price_range consistent with the budget

Format as JSON:
{
  "gift_ideas": [
    {
      "title": "Creative, specific gift name",
      "description": "Detailed explanation with psychological reasoning combining why this fits their personality/needs",
      "starter": "Exactly how to introduce/present this gift",
      "reaction": "Realistic emotional response based on their personality",
      "image_search_terms": "2-4 concrete product words",
      "product_search_query": "short store search query",
      "price_range": "approximate price range"
    }
  ]
}

Ensure all recommendations are within budget, respect limitations, and demonstrate the thoughtfulness that strengthens relationships.`)

	return b.String()
}
