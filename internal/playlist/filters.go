package playlist

import "strings"

// Filters selects tracks. Every field is optional; an unset field does not
// constrain the result.
type Filters struct {
	// Title matches a case-insensitive substring of the track title.
	Title string `json:"title,omitempty" validate:"omitempty,max=200" doc:"Substring of the track title"`

	// Genres and GenreGroups are ORed together into one genre pool.
	Genres      []string `json:"genres,omitempty" validate:"omitempty,max=50,dive,genre" doc:"Genres to match (any)"`
	GenreGroups []string `json:"genre_groups,omitempty" validate:"omitempty,max=20,dive,required" doc:"Genre groups to match (any)"`

	// BPM is only applied when both bounds are set.
	MinBPM *int `json:"min_bpm,omitempty" validate:"omitempty,bpm" doc:"Inclusive lower BPM bound"`
	MaxBPM *int `json:"max_bpm,omitempty" validate:"omitempty,bpm" doc:"Inclusive upper BPM bound"`

	// Artists and SimilarTo are ORed together into one artist pool.
	Artists   []string `json:"artists,omitempty" validate:"omitempty,max=50,dive,required" doc:"Artists to match (any)"`
	SimilarTo string   `json:"similar_to,omitempty" validate:"omitempty,max=200" doc:"Seed artist; matches tracks by similar artists"`

	Limit   int   `json:"limit,omitempty" validate:"gte=0" doc:"Maximum number of tracks, 0 for no limit"`
	Shuffle *bool `json:"shuffle,omitempty" doc:"Randomize order (default true)"`
}

// ShuffleEnabled reports whether results should be shuffled.
func (f Filters) ShuffleEnabled() bool {
	return f.Shuffle == nil || *f.Shuffle
}

// BPMRange returns the BPM bounds when both are set.
func (f Filters) BPMRange() (minBPM, maxBPM int, ok bool) {
	if f.MinBPM == nil || f.MaxBPM == nil {
		return 0, 0, false
	}
	return *f.MinBPM, *f.MaxBPM, true
}

// HasTitle reports whether the title dimension is requested.
func (f Filters) HasTitle() bool {
	return strings.TrimSpace(f.Title) != ""
}

// HasGenrePool reports whether the genre pool is requested.
func (f Filters) HasGenrePool() bool {
	return len(nonBlank(f.Genres)) > 0 || len(nonBlank(f.GenreGroups)) > 0
}

// HasArtistPool reports whether the artist pool is requested.
func (f Filters) HasArtistPool() bool {
	return len(nonBlank(f.Artists)) > 0 || strings.TrimSpace(f.SimilarTo) != ""
}

// IsEmpty reports whether no dimension is requested.
func (f Filters) IsEmpty() bool {
	_, _, bpm := f.BPMRange()
	return !f.HasTitle() && !f.HasGenrePool() && !bpm && !f.HasArtistPool()
}

// Bool returns a pointer to b, for building Filters literals.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to n, for building Filters literals.
func Int(n int) *int { return &n }

// nonBlank returns the trimmed, non-empty values of in.
func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
