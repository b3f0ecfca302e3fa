package genre

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// straightenQuote maps typographic quotation marks to their ASCII forms.
func straightenQuote(r rune) rune {
	switch r {
	case '‘', '’':
		return '\''
	case '“', '”':
		return '"'
	default:
		return r
	}
}

// canonicalChain builds the folding pipeline applied to every tag.
// Casers keep per-call state, so a chain must not be shared between goroutines.
func canonicalChain() transform.Transformer {
	return transform.Chain(
		cases.Lower(language.Und),
		runes.Map(straightenQuote),
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		// Compatibility decompositions can produce capitals (U+1D2C -> "A").
		cases.Lower(language.Und),
	)
}

// Canonicalize folds case, straightens smart quotes, strips diacritics and
// collapses whitespace runs to a single space.
//
//	"  Nü   Metal " -> "nu metal"
//	"Rock’n’Roll" -> "rock'n'roll"
//
// Whitespace-only input returns "".
func Canonicalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	out, _, err := transform.String(canonicalChain(), s)
	if err != nil {
		out = strings.ToLower(s)
	}

	return collapseSpace(out)
}

// collapseSpace joins whitespace-separated fields with single spaces.
// Leading and trailing whitespace is dropped.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
