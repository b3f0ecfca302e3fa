// Package enrich links local artists to Last.fm similarity data and tags.
package enrich

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/normalize"
)

// DefaultThreshold is the minimum similarity for a fuzzy artist match.
const DefaultThreshold = 0.85

// Match is a local artist resolved from a remote name.
type Match struct {
	Artist *domain.Artist
	Score  float64
	Exact  bool
}

// Matcher resolves artist names from Last.fm against the local library.
type Matcher struct {
	threshold float64
	byKey     map[string]*domain.Artist
	keys      []string
}

// NewMatcher indexes artists by name key. A threshold outside (0, 1] uses DefaultThreshold.
func NewMatcher(artists []*domain.Artist, threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	m := &Matcher{
		threshold: threshold,
		byKey:     make(map[string]*domain.Artist, len(artists)),
	}
	for _, a := range artists {
		key := a.NameKey
		if key == "" {
			key = normalize.NameKey(a.Name)
		}
		if key == "" {
			continue
		}
		if _, dup := m.byKey[key]; dup {
			continue
		}
		m.byKey[key] = a
		m.keys = append(m.keys, key)
	}
	return m
}

// Len returns the number of indexed artists.
func (m *Matcher) Len() int {
	return len(m.byKey)
}

// Find returns the best local match for name, never selfID.
// Exact name-key hits win; otherwise the highest Levenshtein similarity at
// or above the threshold is used, ties broken by index order.
func (m *Matcher) Find(name string, selfID int64) (Match, bool) {
	key := normalize.NameKey(name)
	if key == "" {
		return Match{}, false
	}

	if a, ok := m.byKey[key]; ok {
		if a.ID == selfID {
			return Match{}, false
		}
		return Match{Artist: a, Score: 1, Exact: true}, true
	}

	var best Match
	for _, k := range m.keys {
		a := m.byKey[k]
		if a.ID == selfID {
			continue
		}
		score := Similarity(key, k)
		if score >= m.threshold && score > best.Score {
			best = Match{Artist: a, Score: score}
		}
	}
	return best, best.Artist != nil
}

// Similarity is 1 - distance/maxLen over runes. Two empty strings score 1.
func Similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
