package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainerrors "github.com/listenupapp/crate-server/internal/errors"
	"github.com/listenupapp/crate-server/internal/genre"
	"github.com/listenupapp/crate-server/internal/search"
	"github.com/listenupapp/crate-server/internal/store/sqlite"
)

// SearchService handles track search.
type SearchService struct {
	index      *search.TrackIndex
	store      *sqlite.Store
	normalizer *genre.Normalizer
	logger     *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.TrackIndex, st *sqlite.Store, normalizer *genre.Normalizer, logger *slog.Logger) *SearchService {
	if normalizer == nil {
		normalizer = genre.Default()
	}
	return &SearchService{
		index:      index,
		store:      st,
		normalizer: normalizer,
		logger:     logger,
	}
}

// SearchParams is a track search request.
type SearchParams struct {
	Query         string
	Genres        []string // Any spelling; normalized before matching
	MinBPM        int
	MaxBPM        int
	Limit         int
	Offset        int
	IncludeFacets bool
}

// Search runs a full-text track search. Queries shorter than
// search.MinQueryLength are rejected.
func (s *SearchService) Search(ctx context.Context, params SearchParams) (*search.Result, error) {
	genres := make([]string, 0, len(params.Genres))
	for _, g := range params.Genres {
		if n := s.normalizer.Normalize(g); n != "" {
			genres = append(genres, n)
		}
	}
	if params.MinBPM > 0 && params.MaxBPM > 0 && params.MinBPM > params.MaxBPM {
		return nil, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"min_bpm": "must not exceed max_bpm"})
	}

	result, err := s.index.Search(ctx, search.Params{
		Query:         strings.TrimSpace(params.Query),
		Genres:        genres,
		MinBPM:        params.MinBPM,
		MaxBPM:        params.MaxBPM,
		Limit:         params.Limit,
		Offset:        params.Offset,
		IncludeFacets: params.IncludeFacets,
		Highlight:     true,
	})
	if err != nil {
		if errors.Is(err, search.ErrQueryTooShort) {
			return nil, domainerrors.ValidationWithDetails("validation failed",
				map[string]string{"q": fmt.Sprintf("must be at least %d characters", search.MinQueryLength)})
		}
		return nil, fmt.Errorf("search tracks: %w", err)
	}
	return result, nil
}

// Reindex rebuilds the index from every stored track.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	start := time.Now()

	tracks, err := s.store.ListTracks(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.index.Rebuild(ctx, tracks); err != nil {
		return 0, fmt.Errorf("rebuild search index: %w", err)
	}

	s.logger.Info("search index rebuilt", "tracks", len(tracks), "duration", time.Since(start))
	return len(tracks), nil
}

// DocumentCount returns the number of indexed tracks.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}
