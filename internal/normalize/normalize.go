// Package normalize canonicalizes free-text product names and categories
// so that operator-entered sale records can be compared against the catalog.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// noiseTokens are standalone pack-size suffixes that operators append
// inconsistently ("MARLBORO 20S" vs "Marlboro"). They carry no product
// identity and are dropped entirely.
var noiseTokens = map[string]struct{}{
	"100": {}, "100s": {},
	"20": {}, "20s": {},
	"25": {}, "25s": {},
}

// Normalize lower-cases the text, replaces punctuation and symbols with
// spaces, drops pack-size noise tokens and collapses whitespace runs.
// It is pure and idempotent.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range strings.ToLower(text) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsLetter(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())

	kept := fields[:0]

	for _, f := range fields {
		if _, noise := noiseTokens[f]; noise {
			continue
		}

		kept = append(kept, f)
	}

	return strings.Join(kept, " ")
}

// Category canonicalizes a category label for comparison. Categories are
// curated rather than free text, so only case and surrounding space vary.
func Category(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Tokens splits the normalized text and keeps tokens longer than two
// characters, the unit the fuzzy matcher operates on.
func Tokens(text string) []string {
	var tokens []string

	for _, f := range strings.Fields(Normalize(text)) {
		if utf8.RuneCountInString(f) > 2 {
			tokens = append(tokens, f)
		}
	}

	return tokens
}
