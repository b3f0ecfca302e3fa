package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/listenupapp/crate-server/internal/domain"
	domainerrors "github.com/listenupapp/crate-server/internal/errors"
	"github.com/listenupapp/crate-server/internal/id"
	"github.com/listenupapp/crate-server/internal/playlist"
	"github.com/listenupapp/crate-server/internal/store"
	"github.com/listenupapp/crate-server/internal/store/sqlite"
	"github.com/listenupapp/crate-server/internal/validation"
)

// PlaylistService composes, saves and exports playlists.
type PlaylistService struct {
	store     *sqlite.Store
	composer  *playlist.Composer
	logger    *slog.Logger
	validator *validation.Validator
}

// NewPlaylistService creates a playlist service. A nil composer composes
// over st.
func NewPlaylistService(st *sqlite.Store, composer *playlist.Composer, logger *slog.Logger) *PlaylistService {
	if composer == nil {
		composer = playlist.NewComposer(st)
	}
	return &PlaylistService{
		store:     st,
		composer:  composer,
		logger:    logger,
		validator: validation.New(),
	}
}

// Preview is a composed playlist that has not been saved.
type Preview struct {
	Count  int             `json:"count"`
	Tracks []*domain.Track `json:"tracks"`
}

// Preview composes f and returns the tracks in playlist order.
func (s *PlaylistService) Preview(ctx context.Context, f playlist.Filters) (*Preview, error) {
	if err := s.validate(f); err != nil {
		return nil, err
	}

	ids, err := s.composer.Build(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("compose playlist: %w", err)
	}

	tracks, err := s.store.GetTracks(ctx, ids)
	if err != nil {
		return nil, err
	}
	if tracks == nil {
		tracks = []*domain.Track{}
	}
	return &Preview{Count: len(tracks), Tracks: tracks}, nil
}

// Count returns how many tracks match f, ignoring shuffle and limit.
func (s *PlaylistService) Count(ctx context.Context, f playlist.Filters) (int, error) {
	if err := s.validate(f); err != nil {
		return 0, err
	}

	set, err := s.composer.Resolve(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("compose playlist: %w", err)
	}
	return set.Len(), nil
}

// CreateRequest saves a composed playlist.
type CreateRequest struct {
	Name    string           `json:"name" validate:"required,max=200" doc:"Unique playlist name"`
	Filters playlist.Filters `json:"filters" doc:"Filters to compose"`
}

// Create composes the filters and stores the resulting order. Filters that
// request no dimension are rejected since they can only save an empty list.
func (s *PlaylistService) Create(ctx context.Context, req CreateRequest) (*domain.Playlist, error) {
	req, err := s.validateCreate(req)
	if err != nil {
		return nil, err
	}

	ids, err := s.composer.Build(ctx, req.Filters)
	if err != nil {
		return nil, fmt.Errorf("compose playlist: %w", err)
	}
	return s.save(ctx, req, ids)
}

// SavePreview stores an already composed preview under req.Name, keeping the
// order and subset that preview holds.
func (s *PlaylistService) SavePreview(ctx context.Context, req CreateRequest, preview *Preview) (*domain.Playlist, error) {
	req, err := s.validateCreate(req)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(preview.Tracks))
	for _, t := range preview.Tracks {
		if t != nil {
			ids = append(ids, t.ID)
		}
	}
	return s.save(ctx, req, ids)
}

func (s *PlaylistService) validateCreate(req CreateRequest) (CreateRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return req, err
	}
	if err := s.validate(req.Filters); err != nil {
		return req, err
	}
	if req.Filters.IsEmpty() {
		return req, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"filters": "at least one filter is required"})
	}
	return req, nil
}

func (s *PlaylistService) save(ctx context.Context, req CreateRequest, ids []int64) (*domain.Playlist, error) {
	playlistID, err := id.NewPlaylistID()
	if err != nil {
		return nil, fmt.Errorf("generate playlist id: %w", err)
	}

	p := &domain.Playlist{
		ID:        playlistID,
		Name:      req.Name,
		Filters:   req.Filters,
		TrackIDs:  ids,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreatePlaylist(ctx, p); err != nil {
		if store.IsAlreadyExists(err) {
			return nil, domainerrors.AlreadyExistsf("playlist %q already exists", req.Name)
		}
		return nil, err
	}

	s.logger.Info("playlist saved", "playlist_id", p.ID, "name", p.Name, "tracks", p.TrackCount)
	return p, nil
}

// Get returns a saved playlist with its track IDs.
func (s *PlaylistService) Get(ctx context.Context, playlistID string) (*domain.Playlist, error) {
	p, err := s.store.GetPlaylist(ctx, playlistID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domainerrors.NotFoundf("playlist %q not found", playlistID)
		}
		return nil, err
	}
	return p, nil
}

// List returns saved playlists without their track IDs.
func (s *PlaylistService) List(ctx context.Context) ([]*domain.Playlist, error) {
	return s.store.ListPlaylists(ctx)
}

// Delete removes a saved playlist.
func (s *PlaylistService) Delete(ctx context.Context, playlistID string) error {
	if err := s.store.DeletePlaylist(ctx, playlistID); err != nil {
		if store.IsNotFound(err) {
			return domainerrors.NotFoundf("playlist %q not found", playlistID)
		}
		return err
	}
	s.logger.Info("playlist deleted", "playlist_id", playlistID)
	return nil
}

// ExportM3U writes the saved playlist as an M3U file.
func (s *PlaylistService) ExportM3U(ctx context.Context, playlistID string, w io.Writer) error {
	p, err := s.Get(ctx, playlistID)
	if err != nil {
		return err
	}
	tracks, err := s.store.GetTracks(ctx, p.TrackIDs)
	if err != nil {
		return err
	}
	return WriteM3U(w, tracks)
}

// WriteM3U writes an #EXTM3U header and one path per track. Tracks without
// a path are skipped.
func WriteM3U(w io.Writer, tracks []*domain.Track) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("#EXTM3U\n"); err != nil {
		return err
	}
	for _, t := range tracks {
		if t == nil || t.Path == "" {
			continue
		}
		if _, err := bw.WriteString(t.Path + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (s *PlaylistService) validate(f playlist.Filters) error {
	if err := s.validator.Validate(f); err != nil {
		return err
	}
	if lo, hi, ok := f.BPMRange(); ok && lo > hi {
		return domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"min_bpm": "must not exceed max_bpm"})
	}
	return nil
}
