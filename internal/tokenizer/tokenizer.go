// Package tokenizer implements the single deterministic tokenization
// scheme used both to build the inverted index and to parse query text.
package tokenizer

import (
	"regexp"
	"strings"
)

// nonWordRegex matches runs of characters other than ASCII letters,
// digits, and underscore. Splitting on it also folds whitespace.
var nonWordRegex = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// Tokenize lowercases text and splits it on maximal runs of non-word
// characters, discarding empty pieces. It is deterministic and
// side-effect free, and is intentionally not camelCase- or
// acronym-aware: the engine's tokenizer sophistication stops here.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	parts := nonWordRegex.Split(lower, -1)

	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
