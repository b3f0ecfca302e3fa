package genre

import (
	"maps"
	"sync"
)

// builtinAliases maps known spelling variants to their canonical genre.
// Keys may be spaced or already hyphenated; both forms are looked up.
//
//nolint:gochecknoglobals // Static lookup table, copied into an AliasTable
var builtinAliases = map[string]string{
	// R&B
	"rnb":              "r&b",
	"r and b":          "r&b",
	"r n b":            "r&b",
	"rhythm and blues": "r&b",
	"rhythmandblues":   "r&b",

	// Rock and roll
	"rock n roll":  "rock and roll",
	"rock & roll":  "rock and roll",
	"rock n' roll": "rock and roll",
	"rock'n'roll":  "rock and roll",
	"rocknroll":    "rock and roll",
	"rock roll":    "rock and roll",

	// Hip-hop
	"hip hop":     "hip-hop",
	"hiphop":      "hip-hop",
	"hip-hop/rap": "hip-hop",
	"hip hop/rap": "hip-hop",

	"trip hop": "trip-hop",
	"triphop":  "trip-hop",

	"lo fi":  "lo-fi",
	"lofi":   "lo-fi",
	"low fi": "lo-fi",
	"low-fi": "lo-fi",

	"electronica": "electronic",

	// Drum & bass
	"drum and bass": "drum & bass",
	"drum n bass":   "drum & bass",
	"drum'n'bass":   "drum & bass",
	"drumnbass":     "drum & bass",
	"dnb":           "drum & bass",
	"d&b":           "drum & bass",
	"d and b":       "drum & bass",

	"shoe gaze": "shoegaze",
	"shoe-gaze": "shoegaze",

	"synth pop": "synth-pop",
	"synthpop":  "synth-pop",

	"post punk": "post-punk",
	"postpunk":  "post-punk",
	"post rock": "post-rock",
	"postrock":  "post-rock",

	"newwave":  "new wave",
	"new-wave": "new wave",

	"pop punk": "pop-punk",
	"poppunk":  "pop-punk",

	"dream pop": "dream-pop",
	"dreampop":  "dream-pop",

	"brit pop": "britpop",
	"brit-pop": "britpop",

	"math rock":   "math-rock",
	"mathrock":    "math-rock",
	"noise rock":  "noise-rock",
	"noiserock":   "noise-rock",
	"space rock":  "space-rock",
	"spacerock":   "space-rock",
	"stoner rock": "stoner-rock",
	"stonerrock":  "stoner-rock",

	"nu metal":   "nu-metal",
	"numetal":    "nu-metal",
	"nu-metal":   "nu-metal",
	"nü metal":   "nu-metal",
	"nü-metal":   "nu-metal",
	"art rock":   "art-rock",
	"artrock":    "art-rock",
	"indie rock": "indie-rock",
	"indierock":  "indie-rock",
	"indie pop":  "indie-pop",
	"indiepop":   "indie-pop",

	"alt country":         "alt-country",
	"altcountry":          "alt-country",
	"alternative country": "alt-country",

	"power pop":     "power-pop",
	"powerpop":      "power-pop",
	"garage rock":   "garage-rock",
	"garagerock":    "garage-rock",
	"hard rock":     "hard-rock",
	"hardrock":      "hard-rock",
	"acid house":    "acid-house",
	"acidhouse":     "acid-house",
	"acid jazz":     "acid-jazz",
	"acidjazz":      "acid-jazz",
	"electro house": "electro-house",
	"electrohouse":  "electro-house",

	"dark wave": "darkwave",
	"dark-wave": "darkwave",
	"cold wave": "coldwave",
	"cold-wave": "coldwave",
	"slow core": "slowcore",
	"slow-core": "slowcore",

	// Metal
	"speed metal":  "speed-metal",
	"speedmetal":   "speed-metal",
	"power metal":  "power-metal",
	"powermetal":   "power-metal",
	"thrash metal": "thrash-metal",
	"thrashmetal":  "thrash-metal",
	"death metal":  "death-metal",
	"deathmetal":   "death-metal",
	"black metal":  "black-metal",
	"blackmetal":   "black-metal",
	"doom metal":   "doom-metal",
	"doommetal":    "doom-metal",
	"heavy metal":  "heavy-metal",
	"heavymetal":   "heavy-metal",

	"folk rock": "folk-rock",
	"folkrock":  "folk-rock",
	"folk punk": "folk-punk",
	"folkpunk":  "folk-punk",

	"psychedelic rock": "psychedelic-rock",
	"psychedelicrock":  "psychedelic-rock",

	"progressive rock": "progressive-rock",
	"progressiverock":  "progressive-rock",
	"prog rock":        "progressive-rock",
	"prog-rock":        "progressive-rock",
	"progrock":         "progressive-rock",

	"progressive metal": "progressive-metal",
	"progressivemetal":  "progressive-metal",
	"prog metal":        "progressive-metal",
	"prog-metal":        "progressive-metal",
	"progmetal":         "progressive-metal",

	// Decades
	"00s":     "2000s",
	"10s":     "2010s",
	"20s":     "2020s",
	"the 80s": "80s",
	"the 90s": "90s",
	"the 70s": "70s",
	"the 60s": "60s",

	"uk": "british",

	"singer songwriter": "singer-songwriter",
	"singersongwriter":  "singer-songwriter",
}

// AliasTable is an immutable variant-to-canonical lookup.
// Keys are stored in canonical text form, so lookups must be canonicalized first.
type AliasTable struct {
	entries map[string]string
}

// NewAliasTable copies entries into a new table.
// Keys are canonicalized on the way in; keys that canonicalize to "" are dropped.
func NewAliasTable(entries map[string]string) *AliasTable {
	m := make(map[string]string, len(entries))
	for variant, canonical := range entries {
		key := Canonicalize(variant)
		if key == "" {
			continue
		}
		m[key] = canonical
	}
	return &AliasTable{entries: m}
}

var defaultAliases = sync.OnceValue(func() *AliasTable {
	return NewAliasTable(builtinAliases)
})

// DefaultAliases returns the built-in alias table.
func DefaultAliases() *AliasTable {
	return defaultAliases()
}

// Resolve returns the canonical form for text, if the table knows it.
func (t *AliasTable) Resolve(text string) (string, bool) {
	if t == nil {
		return "", false
	}
	canonical, ok := t.entries[text]
	return canonical, ok
}

// Len returns the number of variants in the table.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the table contents.
func (t *AliasTable) Entries() map[string]string {
	if t == nil {
		return map[string]string{}
	}
	return maps.Clone(t.entries)
}
