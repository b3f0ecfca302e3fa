package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/listenupapp/crate-server/internal/normalize"
	"github.com/listenupapp/crate-server/internal/playlist"
)

var _ playlist.Lookup = (*Store)(nil)

// TracksByTitle matches a case-insensitive substring of the title.
func (s *Store) TracksByTitle(ctx context.Context, title string) (playlist.TrackSet, error) {
	return s.trackSet(ctx, "title", `
		SELECT id FROM tracks WHERE LOWER(title) LIKE ? ESCAPE '\'`,
		normalize.ContainsPattern(strings.TrimSpace(title)))
}

// TracksByGenres matches tracks whose effective genres contain any of the
// terms. Each term is normalized first; its plain lowercase form is also
// tried so libraries that were never normalized still match.
func (s *Store) TracksByGenres(ctx context.Context, genres []string) (playlist.TrackSet, error) {
	seen := make(map[string]struct{})
	var patterns []any
	add := func(term string) {
		if term == "" {
			return
		}
		p := normalize.ContainsPattern(term)
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		patterns = append(patterns, p)
	}
	for _, g := range genres {
		add(s.normalizer.Normalize(g))
		add(strings.TrimSpace(g))
	}
	if len(patterns) == 0 {
		return playlist.TrackSet{}, nil
	}

	conds := make([]string, len(patterns))
	for i := range patterns {
		conds[i] = `LOWER(g.name) LIKE ? ESCAPE '\'`
	}

	return s.trackSet(ctx, "genres", effectiveGenresCTE+`
		SELECT DISTINCT eff.track_id
		FROM eff JOIN genres g ON g.id = eff.genre_id
		WHERE `+strings.Join(conds, " OR "), patterns...)
}

// TracksByExactGenres matches tracks with any of the genres as an
// effective genre, ignoring case.
func (s *Store) TracksByExactGenres(ctx context.Context, genres []string) (playlist.TrackSet, error) {
	args := lowerArgs(genres)
	if len(args) == 0 {
		return playlist.TrackSet{}, nil
	}
	return s.trackSet(ctx, "exact genres", effectiveGenresCTE+`
		SELECT DISTINCT eff.track_id
		FROM eff JOIN genres g ON g.id = eff.genre_id
		WHERE LOWER(g.name) IN (`+placeholders(len(args))+`)`, args...)
}

// TracksByBPM matches tracks with minBPM <= bpm <= maxBPM.
// Tracks without a known tempo never match.
func (s *Store) TracksByBPM(ctx context.Context, minBPM, maxBPM int) (playlist.TrackSet, error) {
	return s.trackSet(ctx, "bpm", `
		SELECT id FROM tracks WHERE bpm IS NOT NULL AND bpm BETWEEN ? AND ?`, minBPM, maxBPM)
}

// TracksByArtists matches tracks by any of the named artists, by exact
// name ignoring case or by name key.
func (s *Store) TracksByArtists(ctx context.Context, artists []string) (playlist.TrackSet, error) {
	names := lowerArgs(artists)
	if len(names) == 0 {
		return playlist.TrackSet{}, nil
	}
	keys := make([]any, 0, len(artists))
	for _, a := range artists {
		if k := normalize.NameKey(a); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		keys = append(keys, "")
	}

	args := append(names, keys...)
	return s.trackSet(ctx, "artists", `
		SELECT t.id FROM tracks t
		JOIN artists a ON a.id = t.artist_id
		WHERE LOWER(a.name) IN (`+placeholders(len(names))+`)
			OR a.name_key IN (`+placeholders(len(keys))+`)`, args...)
}

// TracksBySimilarArtists matches tracks by artists similar to seed.
// The seed's own tracks are excluded.
func (s *Store) TracksBySimilarArtists(ctx context.Context, seed string) (playlist.TrackSet, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return playlist.TrackSet{}, nil
	}
	return s.trackSet(ctx, "similar artists", `
		SELECT DISTINCT t.id
		FROM artists seed
		JOIN similar_artists sa ON sa.artist_id = seed.id
		JOIN tracks t ON t.artist_id = sa.similar_artist_id
		WHERE (LOWER(seed.name) = LOWER(?) OR seed.name_key = ?)
			AND t.artist_id <> seed.id`,
		seed, normalize.NameKey(seed))
}

func (s *Store) trackSet(ctx context.Context, dim, query string, args ...any) (playlist.TrackSet, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tracks by %s: %w", dim, err)
	}
	defer rows.Close()

	set := playlist.TrackSet{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan track id: %w", err)
		}
		set.Add(id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query tracks by %s: %w", dim, err)
	}
	return set, nil
}

// lowerArgs returns the trimmed, lowercased, non-empty values as query args.
func lowerArgs(values []string) []any {
	args := make([]any, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			args = append(args, v)
		}
	}
	return args
}
