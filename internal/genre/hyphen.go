package genre

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// builtinPrefixes are words that bind to the following word with a hyphen.
//
//nolint:gochecknoglobals // Static lookup table
var builtinPrefixes = []string{
	"acid", "afro", "alt", "anti", "art", "avant",
	"dark", "dream", "electro", "euro", "folk",
	"garage", "hard", "hyper", "indie", "jazz",
	"math", "neo", "noise", "nu", "post", "power",
	"pre", "proto", "psycho", "slow", "space",
	"speed", "stoner", "synth", "trip",
}

// PrefixSet is an immutable set of hyphenating prefixes.
type PrefixSet struct {
	words map[string]struct{}
}

// NewPrefixSet builds a set from the given words.
// Words are canonicalized; blank words and words containing spaces are ignored.
func NewPrefixSet(words ...string) *PrefixSet {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = Canonicalize(w)
		if w == "" || strings.Contains(w, " ") {
			continue
		}
		set[w] = struct{}{}
	}
	return &PrefixSet{words: set}
}

var defaultPrefixes = sync.OnceValue(func() *PrefixSet {
	return NewPrefixSet(builtinPrefixes...)
})

// DefaultPrefixes returns the built-in prefix set.
func DefaultPrefixes() *PrefixSet {
	return defaultPrefixes()
}

// Contains reports whether word is a prefix.
func (p *PrefixSet) Contains(word string) bool {
	if p == nil {
		return false
	}
	_, ok := p.words[word]
	return ok
}

// Len returns the number of prefixes.
func (p *PrefixSet) Len() int {
	if p == nil {
		return 0
	}
	return len(p.words)
}

// Words returns the prefixes in sorted order.
func (p *PrefixSet) Words() []string {
	if p == nil {
		return []string{}
	}
	return slices.Sorted(maps.Keys(p.words))
}

// Hyphenate joins every prefix token to the token after it.
// Scanning is greedy left to right, and a joined token is never used as a
// prefix again, so "post neo punk" becomes "post-neo punk".
// Tokens are split on any whitespace and matched case-insensitively; the
// result is joined with single spaces. Text with fewer than two tokens is
// returned unchanged.
func (p *PrefixSet) Hyphenate(text string) string {
	tokens := strings.Fields(text)
	if len(tokens) < 2 {
		return text
	}

	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if prefix := strings.ToLower(tokens[i]); i+1 < len(tokens) && p.Contains(prefix) {
			out = append(out, prefix+"-"+tokens[i+1])
			i++
			continue
		}
		out = append(out, tokens[i])
	}

	return strings.Join(out, " ")
}
