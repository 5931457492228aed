package images

import "strings"

// stopWords are generic tokens that carry no signal when searching for a
// product image ("the perfect gift item" tells a search engine nothing).
var stopWords = map[string]struct{}{
	"gift":    {},
	"present": {},
	"item":    {},
	"product": {},
	"thing":   {},
	"stuff":   {},
	"the":     {},
	"a":       {},
	"an":      {},
	"for":     {},
}

// Normalize cleans a raw AI-supplied search phrase for use as an image query:
// lower-case, split on whitespace, drop stop words and single-character
// tokens, rejoin with single spaces. If cleaning leaves fewer than 3
// characters the original trimmed input is returned unchanged, so aggressive
// stripping can never produce a useless query.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)

	var kept []string
	for _, tok := range strings.Fields(strings.ToLower(trimmed)) {
		if len(tok) <= 1 {
			continue
		}
		if _, generic := stopWords[tok]; generic {
			continue
		}
		kept = append(kept, tok)
	}

	cleaned := strings.Join(kept, " ")
	if len(cleaned) < 3 {
		return trimmed
	}
	return cleaned
}
