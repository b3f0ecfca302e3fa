package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/store"
)

// CreatePlaylist stores p and its ordered track IDs.
// Returns store.ErrAlreadyExists if the name or ID is taken.
func (s *Store) CreatePlaylist(ctx context.Context, p *domain.Playlist) error {
	filters, err := json.Marshal(p.Filters)
	if err != nil {
		return fmt.Errorf("marshal filters: %w", err)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO playlists (id, name, filters, created_at)
			VALUES (?, ?, ?, ?)`,
			p.ID, p.Name, string(filters), formatTime(p.CreatedAt))
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrAlreadyExists.WithMessagef("playlist %q already exists", p.Name)
			}
			return fmt.Errorf("insert playlist: %w", err)
		}

		for pos, trackID := range p.TrackIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO playlist_tracks (playlist_id, position, track_id)
				VALUES (?, ?, ?)`,
				p.ID, pos, trackID); err != nil {
				return fmt.Errorf("insert playlist track: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	p.TrackCount = len(p.TrackIDs)
	return nil
}

const playlistColumns = `p.id, p.name, p.filters, p.created_at,
	(SELECT COUNT(*) FROM playlist_tracks pt WHERE pt.playlist_id = p.id)`

func scanPlaylist(scanner interface{ Scan(dest ...any) error }) (*domain.Playlist, error) {
	var (
		p         domain.Playlist
		filters   string
		createdAt string
	)
	if err := scanner.Scan(&p.ID, &p.Name, &filters, &createdAt, &p.TrackCount); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(filters), &p.Filters); err != nil {
		return nil, fmt.Errorf("unmarshal filters: %w", err)
	}
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPlaylist retrieves a playlist with its track IDs in saved order.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetPlaylist(ctx context.Context, id string) (*domain.Playlist, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+playlistColumns+` FROM playlists p WHERE p.id = ?`, id)
	p, err := scanPlaylist(row)
	if err != nil {
		return nil, notFound(err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT track_id FROM playlist_tracks
		WHERE playlist_id = ?
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query playlist tracks: %w", err)
	}
	defer rows.Close()

	p.TrackIDs = []int64{}
	for rows.Next() {
		var trackID int64
		if err := rows.Scan(&trackID); err != nil {
			return nil, fmt.Errorf("scan playlist track: %w", err)
		}
		p.TrackIDs = append(p.TrackIDs, trackID)
	}
	return p, rows.Err()
}

// ListPlaylists returns every playlist, newest first, without track IDs.
func (s *Store) ListPlaylists(ctx context.Context) ([]*domain.Playlist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+playlistColumns+` FROM playlists p ORDER BY p.created_at DESC, p.name`)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	var out []*domain.Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePlaylist removes a playlist.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
