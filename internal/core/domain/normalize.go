package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes text for comparison: lowercase, accents stripped,
// only letters, digits and whitespace kept, whitespace collapsed and trimmed.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(input string) string {
	if input == "" {
		return ""
	}

	stripped, _, err := transform.String(accentStripper(), strings.ToLower(input))
	if err != nil {
		stripped = strings.ToLower(input)
	}

	var out strings.Builder
	out.Grow(len(stripped))
	pendingSpace := false
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			if pendingSpace && out.Len() > 0 {
				out.WriteByte(' ')
			}
			pendingSpace = false
			out.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}

	return out.String()
}

// accentStripper decomposes, drops combining marks and recomposes what is left
// (Hangul and similar scripts decompose into letters, not marks).
// transform.Chain keeps state, so each call gets a fresh one.
func accentStripper() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
