package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/normalize"
	"github.com/listenupapp/crate-server/internal/store"
)

// artistColumns must match the scan order in scanArtist.
const artistColumns = `id, name, name_key, mbid, lastfm_url, enriched_at, created_at`

func scanArtist(scanner interface{ Scan(dest ...any) error }) (*domain.Artist, error) {
	var (
		a          domain.Artist
		mbid       sql.NullString
		lastfmURL  sql.NullString
		enrichedAt sql.NullString
		createdAt  string
	)

	if err := scanner.Scan(&a.ID, &a.Name, &a.NameKey, &mbid, &lastfmURL, &enrichedAt, &createdAt); err != nil {
		return nil, err
	}

	a.MBID = mbid.String
	a.LastFMURL = lastfmURL.String

	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if a.EnrichedAt, err = parseNullableTime(enrichedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpsertArtist returns the artist whose name key matches name, creating it
// if needed. The first spelling seen is kept as the display name.
func (s *Store) UpsertArtist(ctx context.Context, name string) (*domain.Artist, error) {
	return upsertArtist(ctx, s.db, name)
}

func upsertArtist(ctx context.Context, q querier, name string) (*domain.Artist, error) {
	name = normalize.Sanitize(name)
	key := normalize.NameKey(name)
	if key == "" {
		return nil, store.ErrInvalidInput.WithMessage("artist name is empty")
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO artists (name, name_key, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name_key) DO NOTHING`,
		name, key, now())
	if err != nil {
		return nil, fmt.Errorf("insert artist: %w", err)
	}

	row := q.QueryRowContext(ctx, `SELECT `+artistColumns+` FROM artists WHERE name_key = ?`, key)
	a, err := scanArtist(row)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// GetArtist retrieves an artist by ID.
// Returns store.ErrNotFound if the artist does not exist.
func (s *Store) GetArtist(ctx context.Context, id int64) (*domain.Artist, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+artistColumns+` FROM artists WHERE id = ?`, id)
	a, err := scanArtist(row)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// GetArtistByName retrieves an artist by name key.
// Returns store.ErrNotFound if no artist matches.
func (s *Store) GetArtistByName(ctx context.Context, name string) (*domain.Artist, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+artistColumns+` FROM artists WHERE name_key = ?`, normalize.NameKey(name))
	a, err := scanArtist(row)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// ListArtists returns all artists ordered by name.
func (s *Store) ListArtists(ctx context.Context) ([]*domain.Artist, error) {
	return s.queryArtists(ctx, `SELECT `+artistColumns+` FROM artists ORDER BY name COLLATE NOCASE`)
}

// ListArtistsToEnrich returns up to limit artists never enriched or enriched
// before cutoff, oldest first. limit <= 0 means all.
func (s *Store) ListArtistsToEnrich(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Artist, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryArtists(ctx, `
		SELECT `+artistColumns+` FROM artists
		WHERE enriched_at IS NULL OR enriched_at < ?
		ORDER BY enriched_at IS NOT NULL, enriched_at, id
		LIMIT ?`,
		formatTime(cutoff), limit)
}

func (s *Store) queryArtists(ctx context.Context, query string, args ...any) ([]*domain.Artist, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query artists: %w", err)
	}
	defer rows.Close()

	var artists []*domain.Artist
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

// MarkArtistEnriched records a completed enrichment.
func (s *Store) MarkArtistEnriched(ctx context.Context, id int64, lastfmURL, mbid string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE artists SET
			enriched_at = ?,
			lastfm_url = COALESCE(?, lastfm_url),
			mbid = COALESCE(?, mbid)
		WHERE id = ?`,
		formatTime(at), nullString(lastfmURL), nullString(mbid), id)
	if err != nil {
		return fmt.Errorf("update artist: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SetArtistGenres replaces the artist's genre tags. Tags are stored as raw
// genres; weight is the rank, highest first.
func (s *Store) SetArtistGenres(ctx context.Context, artistID int64, tags []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM artist_genres WHERE artist_id = ?`, artistID); err != nil {
			return fmt.Errorf("delete artist_genres: %w", err)
		}

		ids, err := ensureGenres(ctx, tx, tags)
		if err != nil {
			return err
		}

		for i, genreID := range ids {
			_, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO artist_genres (artist_id, genre_id, weight)
				VALUES (?, ?, ?)`,
				artistID, genreID, len(ids)-i)
			if err != nil {
				return fmt.Errorf("insert artist_genres: %w", err)
			}
		}
		return nil
	})
}

// GetArtistGenres returns the artist's raw genre tags, highest weight first.
func (s *Store) GetArtistGenres(ctx context.Context, artistID int64) ([]string, error) {
	return queryStrings(ctx, s.db, `
		SELECT g.name FROM artist_genres ag
		JOIN genres g ON g.id = ag.genre_id
		WHERE ag.artist_id = ?
		ORDER BY ag.weight DESC, g.name`, artistID)
}

// SetSimilarArtists replaces the outgoing similarity edges of artistID.
// Self edges are skipped.
func (s *Store) SetSimilarArtists(ctx context.Context, artistID int64, similar []domain.SimilarArtist) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM similar_artists WHERE artist_id = ?`, artistID); err != nil {
			return fmt.Errorf("delete similar_artists: %w", err)
		}

		for _, sa := range similar {
			if sa.SimilarArtistID == artistID {
				continue
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO similar_artists (artist_id, similar_artist_id, match)
				VALUES (?, ?, ?)
				ON CONFLICT(artist_id, similar_artist_id) DO UPDATE SET match = MAX(match, excluded.match)`,
				artistID, sa.SimilarArtistID, sa.Match)
			if err != nil {
				return fmt.Errorf("insert similar_artists: %w", err)
			}
		}
		return nil
	})
}

// GetSimilarArtists returns the artists similar to artistID, best match first.
func (s *Store) GetSimilarArtists(ctx context.Context, artistID int64) ([]domain.SimilarArtist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sa.artist_id, sa.similar_artist_id, a.name, sa.match
		FROM similar_artists sa
		JOIN artists a ON a.id = sa.similar_artist_id
		WHERE sa.artist_id = ?
		ORDER BY sa.match DESC, a.name`, artistID)
	if err != nil {
		return nil, fmt.Errorf("query similar_artists: %w", err)
	}
	defer rows.Close()

	var out []domain.SimilarArtist
	for rows.Next() {
		var sa domain.SimilarArtist
		if err := rows.Scan(&sa.ArtistID, &sa.SimilarArtistID, &sa.Name, &sa.Match); err != nil {
			return nil, fmt.Errorf("scan similar_artists: %w", err)
		}
		out = append(out, sa)
	}
	return out, rows.Err()
}

// queryStrings runs a single-column query.
func queryStrings(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
