package sqlite

import (
	"context"
	"fmt"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/normalize"
)

// effectiveGenresCTE yields (track_id, genre_id) pairs for every track's
// effective canonical genres. Raw genres resolve through genre_aliases.
// A track's own tags win; artist tags apply only to tracks with none.
const effectiveGenresCTE = `
	WITH eff(track_id, genre_id) AS (
		SELECT tg.track_id, COALESCE(ta.canonical_genre_id, tg.genre_id)
		FROM track_genres tg
		LEFT JOIN genre_aliases ta ON ta.raw_genre_id = tg.genre_id
		UNION
		SELECT t.id, COALESCE(aa.canonical_genre_id, ag.genre_id)
		FROM tracks t
		JOIN artist_genres ag ON ag.artist_id = t.artist_id
		LEFT JOIN genre_aliases aa ON aa.raw_genre_id = ag.genre_id
		WHERE NOT EXISTS (SELECT 1 FROM track_genres x WHERE x.track_id = t.id)
	)`

// genreColumns must match the scan order in scanGenre.
const genreColumns = `g.id, g.name, g.created_at`

func scanGenre(scanner interface{ Scan(dest ...any) error }, withCount bool) (*domain.Genre, error) {
	var (
		g         domain.Genre
		createdAt string
	)

	dest := []any{&g.ID, &g.Name, &createdAt}
	if withCount {
		dest = append(dest, &g.TrackCount)
	}
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &g, nil
}

// ensureGenres inserts any missing genre names and returns the IDs of all
// names in input order, without duplicates. Blank names are skipped.
func ensureGenres(ctx context.Context, q querier, names []string) ([]int64, error) {
	seen := make(map[int64]struct{}, len(names))
	ids := make([]int64, 0, len(names))

	for _, name := range names {
		name = normalize.Sanitize(name)
		if name == "" {
			continue
		}

		if _, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO genres (name, created_at) VALUES (?, ?)`, name, now()); err != nil {
			return nil, fmt.Errorf("insert genre %q: %w", name, err)
		}

		var id int64
		if err := q.QueryRowContext(ctx, `SELECT id FROM genres WHERE name = ?`, name).Scan(&id); err != nil {
			return nil, fmt.Errorf("get genre %q: %w", name, err)
		}

		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// ListGenreNames returns every stored genre name, raw and canonical.
func (s *Store) ListGenreNames(ctx context.Context) ([]string, error) {
	names, err := queryStrings(ctx, s.db, `SELECT name FROM genres ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list genre names: %w", err)
	}
	return names, nil
}

// getGenreByName retrieves a genre by exact name.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) getGenreByName(ctx context.Context, name string) (*domain.Genre, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+genreColumns+` FROM genres g WHERE g.name = ?`, name)
	g, err := scanGenre(row, false)
	if err != nil {
		return nil, notFound(err)
	}
	return g, nil
}

// ListCanonicalGenres returns the canonical genres with their effective
// track counts, most used first. Before any normalization has run there
// are no aliases, and every genre is listed.
func (s *Store) ListCanonicalGenres(ctx context.Context) ([]*domain.Genre, error) {
	var aliases int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM genre_aliases`).Scan(&aliases); err != nil {
		return nil, fmt.Errorf("count aliases: %w", err)
	}

	filter := ""
	if aliases > 0 {
		filter = `WHERE g.id IN (SELECT canonical_genre_id FROM genre_aliases)`
	}

	rows, err := s.db.QueryContext(ctx, effectiveGenresCTE+`
		SELECT `+genreColumns+`, COUNT(DISTINCT eff.track_id)
		FROM genres g
		LEFT JOIN eff ON eff.genre_id = g.id
		`+filter+`
		GROUP BY g.id
		ORDER BY COUNT(DISTINCT eff.track_id) DESC, g.name`)
	if err != nil {
		return nil, fmt.Errorf("query canonical genres: %w", err)
	}
	defer rows.Close()

	var genres []*domain.Genre
	for rows.Next() {
		g, err := scanGenre(rows, true)
		if err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}
