// Package questionnaire validates and sanitizes the eight free-text answers
// a user submits about the gift recipient.
package questionnaire

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// RequiredFields lists every answer the generator needs, in the order the
// form presents them.
var RequiredFields = []string{
	"call_them",
	"relationship",
	"previous_gifts",
	"hate",
	"complaints",
	"complain_about_them",
	"budget",
	"limitations",
}

// maxAnswerLength caps a single answer. Anything longer is truncated rather
// than rejected; the tail of a rambling answer rarely changes the ideas.
const maxAnswerLength = 1000

// injectionFragments are removed from answers before they reach a prompt or
// a stored payload. Matching is case-insensitive.
var injectionFragments = []string{
	"<script",
	"javascript:",
	"eval(",
	"exec(",
}

// Answers maps field name to the user's free-text response.
type Answers map[string]string

// Validate checks that every required field is present and non-blank. The
// error names all offending fields at once so the client can surface a
// single complete message.
func Validate(a Answers) error {
	var missing []string
	for _, field := range RequiredFields {
		if strings.TrimSpace(a[field]) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing or empty responses for: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Sanitize strips known injection fragments from a single answer, collapses
// surrounding whitespace and enforces the length cap.
func Sanitize(answer string) string {
	cleaned := answer
	lower := strings.ToLower(cleaned)
	for _, frag := range injectionFragments {
		for {
			idx := strings.Index(lower, frag)
			if idx < 0 {
				break
			}
			cleaned = cleaned[:idx] + cleaned[idx+len(frag):]
			lower = strings.ToLower(cleaned)
		}
	}
	cleaned = strings.TrimSpace(cleaned)
	if len(cleaned) > maxAnswerLength {
		// Back off to a rune boundary so the cut never leaves an
		// invalid UTF-8 tail.
		cut := maxAnswerLength
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
		cleaned = cleaned[:cut]
	}
	return cleaned
}

// SanitizeAll returns a new Answers with every required field sanitized.
// Unknown fields in the input are dropped.
func SanitizeAll(a Answers) Answers {
	out := make(Answers, len(RequiredFields))
	for _, field := range RequiredFields {
		out[field] = Sanitize(a[field])
	}
	return out
}
