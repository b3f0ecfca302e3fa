package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/genre"
)

// TrackIndex wraps a Bleve index of tracks.
//
// All public methods are safe for concurrent use. Rebuild takes the write
// lock; everything else shares the read lock.
type TrackIndex struct {
	index      bleve.Index
	path       string
	normalizer *genre.Normalizer
	logger     *slog.Logger
	mu         sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath   string            // Directory for index storage
	Normalizer *genre.Normalizer // Genre normalizer (genre.Default() if nil)
	Logger     *slog.Logger      // Logger for operations (uses discard if nil)
}

// mappingVersion is bumped whenever the mapping changes; a mismatch on
// startup drops and recreates the index.
const mappingVersion = "1"

// NewTrackIndex creates or opens the index under opts.DataPath.
// A corrupted index or one built with an older mapping is recreated.
func NewTrackIndex(opts Options) (*TrackIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = genre.Default()
	}

	indexPath := filepath.Join(opts.DataPath, "tracks.bleve")
	versionPath := filepath.Join(opts.DataPath, "tracks.version")

	var index bleve.Index
	var err error
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(indexPath); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			logger.Info("search index has no version file, will rebuild", "new_version", mappingVersion)
			needsRebuild = true
		case string(existingVersion) != mappingVersion:
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(existingVersion),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing index, will recreate", "path", indexPath, "error", err)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(indexPath); removeErr != nil {
			return nil, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	if index == nil {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); writeErr != nil {
			logger.Warn("failed to write search version file", "error", writeErr)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &TrackIndex{
		index:      index,
		path:       indexPath,
		normalizer: normalizer,
		logger:     logger,
	}, nil
}

// Close closes the index and releases resources.
func (s *TrackIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexTracks adds or replaces tracks, committing in chunks of 500.
func (s *TrackIndex) IndexTracks(ctx context.Context, tracks []*domain.Track) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500

	for i := 0; i < len(tracks); i += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(i+batchSize, len(tracks))

		batch := s.index.NewBatch()
		for _, t := range tracks[i:end] {
			doc := TrackToDocument(t, s.normalizer)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DeleteTrack removes a track from the index.
func (s *TrackIndex) DeleteTrack(_ context.Context, id int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(DocID(id))
}

// DocumentCount returns the number of indexed tracks.
func (s *TrackIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Ping reports whether the index answers a count.
func (s *TrackIndex) Ping() error {
	_, err := s.DocumentCount()
	return err
}

// Rebuild drops the index and indexes tracks from scratch.
// Searches block while the index is being recreated.
func (s *TrackIndex) Rebuild(ctx context.Context, tracks []*domain.Track) error {
	s.mu.Lock()
	if err := s.index.Close(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("remove index: %w", err)
	}
	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index
	s.mu.Unlock()

	if err := s.IndexTracks(ctx, tracks); err != nil {
		return err
	}
	s.logger.Info("rebuilt search index", "path", s.path, "tracks", len(tracks))
	return nil
}
