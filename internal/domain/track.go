package domain

import "time"

// Artist is a performer. NameKey is the matching key used to dedupe
// spellings of the same name.
type Artist struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	NameKey    string     `json:"-"`
	MBID       string     `json:"mbid,omitempty"`
	LastFMURL  string     `json:"lastfm_url,omitempty"`
	EnrichedAt *time.Time `json:"enriched_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IsEnriched reports whether the artist was enriched after cutoff.
func (a *Artist) IsEnriched(cutoff time.Time) bool {
	return a.EnrichedAt != nil && a.EnrichedAt.After(cutoff)
}

// SimilarArtist is a directed similarity edge with its match score in [0,1].
type SimilarArtist struct {
	ArtistID        int64   `json:"artist_id"`
	SimilarArtistID int64   `json:"similar_artist_id"`
	Name            string  `json:"name"`
	Match           float64 `json:"match"`
}

// Track is a single audio file in the library.
type Track struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	ArtistID   int64     `json:"artist_id,omitempty"`
	ArtistName string    `json:"artist,omitempty"`
	Album      string    `json:"album,omitempty"`
	Year       int       `json:"year,omitempty"`
	BPM        int       `json:"bpm,omitempty"` // 0 when unknown
	DurationMS int64     `json:"duration_ms,omitempty"`
	Path       string    `json:"path"`
	Genres     []string  `json:"genres,omitempty"` // Raw genre tags
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasBPM reports whether the track's tempo is known.
func (t *Track) HasBPM() bool {
	return t.BPM > 0
}
