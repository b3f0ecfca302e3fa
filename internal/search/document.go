// Package search provides full-text track search using Bleve.
package search

import (
	"strconv"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/genre"
)

// TrackDocument is what the index stores for one track.
// Genres hold canonical names so keyword filters line up with the normalizer.
type TrackDocument struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Artist string   `json:"artist,omitempty"`
	Album  string   `json:"album,omitempty"`
	Genres []string `json:"genres,omitempty"`
	BPM    int      `json:"bpm,omitempty"`
	Year   int      `json:"year,omitempty"`
}

// DocID is the index key for a track ID.
func DocID(trackID int64) string {
	return strconv.FormatInt(trackID, 10)
}

// TrackToDocument converts a track, normalizing its genres.
func TrackToDocument(t *domain.Track, n *genre.Normalizer) *TrackDocument {
	if n == nil {
		n = genre.Default()
	}

	doc := &TrackDocument{
		ID:     DocID(t.ID),
		Title:  t.Title,
		Artist: t.ArtistName,
		Album:  t.Album,
		BPM:    t.BPM,
		Year:   t.Year,
	}

	seen := make(map[string]struct{}, len(t.Genres))
	for _, raw := range t.Genres {
		canonical := n.Normalize(raw)
		if canonical == "" {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		doc.Genres = append(doc.Genres, canonical)
	}
	return doc
}

// ToMap converts the document to a map keyed by the mapping's field names.
// Empty optional fields are left out.
func (d *TrackDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":    d.ID,
		"title": d.Title,
	}
	if d.Artist != "" {
		m["artist"] = d.Artist
	}
	if d.Album != "" {
		m["album"] = d.Album
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if d.BPM > 0 {
		m["bpm"] = d.BPM
	}
	if d.Year > 0 {
		m["year"] = d.Year
	}
	return m
}
