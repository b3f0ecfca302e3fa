package genre

import "sync"

// Stage identifies the pipeline step that produced a canonical genre.
type Stage string

// Pipeline stages, in evaluation order.
const (
	StageEmpty       Stage = "empty"
	StageAlias       Stage = "alias"
	StageHyphenAlias Stage = "hyphen_alias"
	StageHyphenated  Stage = "hyphenated"
	StagePassthrough Stage = "passthrough"
)

// Result describes how a raw tag was normalized.
type Result struct {
	Raw       string `json:"raw"`
	Canonical string `json:"canonical"`
	Stage     Stage  `json:"stage"`
}

// Normalizer maps raw genre tags onto canonical genres.
// It holds only immutable tables and is safe for concurrent use.
type Normalizer struct {
	aliases  *AliasTable
	prefixes *PrefixSet
}

// New creates a Normalizer. Nil tables behave as empty.
func New(aliases *AliasTable, prefixes *PrefixSet) *Normalizer {
	if aliases == nil {
		aliases = NewAliasTable(nil)
	}
	if prefixes == nil {
		prefixes = NewPrefixSet()
	}
	return &Normalizer{aliases: aliases, prefixes: prefixes}
}

var defaultNormalizer = sync.OnceValue(func() *Normalizer {
	return New(DefaultAliases(), DefaultPrefixes())
})

// Default returns a Normalizer over the built-in tables.
func Default() *Normalizer {
	return defaultNormalizer()
}

// Normalize returns the canonical genre for raw, or "" for blank input.
// The output is stable: Normalize(Normalize(x)) == Normalize(x).
//
//	"Hip Hop"     -> "hip-hop"
//	"Rock & Roll" -> "rock and roll"
//	"neo soul"    -> "neo-soul"
func (n *Normalizer) Normalize(raw string) string {
	return n.Explain(raw).Canonical
}

// Explain normalizes raw and reports which stage decided the result.
func (n *Normalizer) Explain(raw string) Result {
	res := Result{Raw: raw}

	text := Canonicalize(raw)
	if text == "" {
		res.Stage = StageEmpty
		return res
	}

	if canonical, ok := n.aliases.Resolve(text); ok {
		res.Canonical, res.Stage = canonical, StageAlias
		return res
	}

	hyphenated := n.prefixes.Hyphenate(text)
	if canonical, ok := n.aliases.Resolve(hyphenated); ok {
		res.Canonical, res.Stage = canonical, StageHyphenAlias
		return res
	}

	res.Canonical = hyphenated
	if hyphenated != text {
		res.Stage = StageHyphenated
	} else {
		res.Stage = StagePassthrough
	}
	return res
}

// Aliases returns the alias table in use.
func (n *Normalizer) Aliases() *AliasTable { return n.aliases }

// Prefixes returns the prefix set in use.
func (n *Normalizer) Prefixes() *PrefixSet { return n.prefixes }

// Normalize normalizes raw with the default tables.
func Normalize(raw string) string {
	return Default().Normalize(raw)
}
