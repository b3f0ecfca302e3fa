package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/store"
)

// trackColumns must match the scan order in scanTrack.
const trackColumns = `t.id, t.title, t.artist_id, a.name, t.album, t.year, t.bpm,
	t.duration_ms, t.path, t.created_at, t.updated_at`

const trackFrom = ` FROM tracks t LEFT JOIN artists a ON a.id = t.artist_id`

func scanTrack(scanner interface{ Scan(dest ...any) error }) (*domain.Track, error) {
	var (
		t          domain.Track
		artistID   sql.NullInt64
		artistName sql.NullString
		album      sql.NullString
		year       sql.NullInt64
		bpm        sql.NullInt64
		duration   sql.NullInt64
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&t.ID, &t.Title, &artistID, &artistName, &album, &year, &bpm,
		&duration, &t.Path, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.ArtistID = artistID.Int64
	t.ArtistName = artistName.String
	t.Album = album.String
	t.Year = int(year.Int64)
	t.BPM = int(bpm.Int64)
	t.DurationMS = duration.Int64

	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpsertTrack inserts or updates a track keyed by path. The artist is
// created from ArtistName when needed, and the track's genre links are
// replaced by Genres. On return t.ID and t.ArtistID are set.
func (s *Store) UpsertTrack(ctx context.Context, t *domain.Track) error {
	if t.Path == "" {
		return store.ErrInvalidInput.WithMessage("track path is empty")
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		t.ArtistID = 0
		if t.ArtistName != "" {
			a, err := upsertArtist(ctx, tx, t.ArtistName)
			if err != nil && !isInvalid(err) {
				return err
			}
			if a != nil {
				t.ArtistID = a.ID
				t.ArtistName = a.Name
			}
		}

		ts := now()
		err := tx.QueryRowContext(ctx, `
			INSERT INTO tracks (title, artist_id, album, year, bpm, duration_ms, path, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				title = excluded.title,
				artist_id = excluded.artist_id,
				album = excluded.album,
				year = excluded.year,
				bpm = excluded.bpm,
				duration_ms = excluded.duration_ms,
				updated_at = excluded.updated_at
			RETURNING id`,
			t.Title,
			nullInt64(t.ArtistID),
			nullString(t.Album),
			nullInt64(int64(t.Year)),
			nullInt64(int64(t.BPM)),
			nullInt64(t.DurationMS),
			t.Path,
			ts, ts,
		).Scan(&t.ID)
		if err != nil {
			return fmt.Errorf("upsert track: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM track_genres WHERE track_id = ?`, t.ID); err != nil {
			return fmt.Errorf("delete track_genres: %w", err)
		}

		ids, err := ensureGenres(ctx, tx, t.Genres)
		if err != nil {
			return err
		}
		for _, genreID := range ids {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO track_genres (track_id, genre_id) VALUES (?, ?)`, t.ID, genreID); err != nil {
				return fmt.Errorf("insert track_genres: %w", err)
			}
		}
		return nil
	})
}

func isInvalid(err error) bool {
	return errors.Is(err, store.ErrInvalidInput)
}

// GetTrack retrieves a track with its raw genres.
// Returns store.ErrNotFound if the track does not exist.
func (s *Store) GetTrack(ctx context.Context, id int64) (*domain.Track, error) {
	tracks, err := s.GetTracks(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, store.ErrNotFound
	}
	return tracks[0], nil
}

// GetTrackByPath retrieves a track by file path.
// Returns store.ErrNotFound if no track has that path.
func (s *Store) GetTrackByPath(ctx context.Context, path string) (*domain.Track, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+trackColumns+trackFrom+` WHERE t.path = ?`, path)
	t, err := scanTrack(row)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.attachGenres(ctx, []*domain.Track{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTracks returns the tracks with the given IDs in the order of ids.
// Unknown IDs are skipped.
func (s *Store) GetTracks(ctx context.Context, ids []int64) ([]*domain.Track, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	byID := make(map[int64]*domain.Track, len(ids))
	for start := 0; start < len(ids); start += maxParams {
		end := min(start+maxParams, len(ids))
		chunk := ids[start:end]

		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		tracks, err := s.queryTracks(ctx,
			`SELECT `+trackColumns+trackFrom+` WHERE t.id IN (`+placeholders(len(chunk))+`)`, args...)
		if err != nil {
			return nil, err
		}
		for _, t := range tracks {
			byID[t.ID] = t
		}
	}

	out := make([]*domain.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	if err := s.attachGenres(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTracks returns every track ordered by ID.
func (s *Store) ListTracks(ctx context.Context) ([]*domain.Track, error) {
	tracks, err := s.queryTracks(ctx, `SELECT `+trackColumns+trackFrom+` ORDER BY t.id`)
	if err != nil {
		return nil, err
	}
	if err := s.attachGenres(ctx, tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// CountTracks returns the number of tracks.
func (s *Store) CountTracks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tracks: %w", err)
	}
	return n, nil
}

// DeleteTrackByPath removes a track and returns its ID.
// Returns store.ErrNotFound if no track has that path.
func (s *Store) DeleteTrackByPath(ctx context.Context, path string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `DELETE FROM tracks WHERE path = ? RETURNING id`, path).Scan(&id)
	if err != nil {
		return 0, notFound(err)
	}
	return id, nil
}

func (s *Store) queryTracks(ctx context.Context, query string, args ...any) ([]*domain.Track, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*domain.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// attachGenres fills in the raw genre tags of tracks.
func (s *Store) attachGenres(ctx context.Context, tracks []*domain.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Track, len(tracks))
	for _, t := range tracks {
		byID[t.ID] = t
	}

	for start := 0; start < len(tracks); start += maxParams {
		end := min(start+maxParams, len(tracks))
		args := make([]any, 0, end-start)
		for _, t := range tracks[start:end] {
			args = append(args, t.ID)
		}

		rows, err := s.db.QueryContext(ctx, `
			SELECT tg.track_id, g.name
			FROM track_genres tg
			JOIN genres g ON g.id = tg.genre_id
			WHERE tg.track_id IN (`+placeholders(len(args))+`)
			ORDER BY tg.track_id, g.name`, args...)
		if err != nil {
			return fmt.Errorf("query track genres: %w", err)
		}

		for rows.Next() {
			var (
				trackID int64
				name    string
			)
			if err := rows.Scan(&trackID, &name); err != nil {
				rows.Close()
				return fmt.Errorf("scan track genre: %w", err)
			}
			if t, ok := byID[trackID]; ok {
				t.Genres = append(t.Genres, name)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
