package library

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/store"
)

// Store persists imported tracks.
type Store interface {
	UpsertTrack(ctx context.Context, t *domain.Track) error
	DeleteTrackByPath(ctx context.Context, path string) (int64, error)
}

// Indexer keeps a search index in step with the store.
type Indexer interface {
	IndexTracks(ctx context.Context, tracks []*domain.Track) error
	DeleteTrack(ctx context.Context, id int64) error
}

// Report summarizes an import.
type Report struct {
	Scanned  int           `json:"scanned"`
	Imported int           `json:"imported"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// Importer reads tags from music files and upserts them.
type Importer struct {
	store   Store
	index   Indexer
	walker  *Walker
	logger  *slog.Logger
	workers int
}

// NewImporter creates an importer. index may be nil.
func NewImporter(st Store, index Indexer, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		store:   st,
		index:   index,
		walker:  NewWalker(logger),
		logger:  logger,
		workers: max(2, runtime.NumCPU()),
	}
}

type parsed struct {
	path    string
	track   *domain.Track
	err     error
	walkErr bool
}

const indexBatchSize = 200

// Import walks root and upserts every music file below it.
// Tag reading runs on a worker pool; writes go through a single writer.
// Unreadable files are counted and skipped.
func (im *Importer) Import(ctx context.Context, root string) (*Report, error) {
	start := time.Now()
	root = filepath.Clean(root)

	g, gctx := errgroup.WithContext(ctx)
	files := im.walker.Walk(gctx, root)
	out := make(chan parsed, im.workers)

	var workers errgroup.Group
	for i := 0; i < im.workers; i++ {
		workers.Go(func() error {
			for f := range files {
				p := parsed{path: f.Path}
				if f.Error != nil {
					p.err, p.walkErr = f.Error, true
				} else if tags, err := ReadTags(f.Path); err != nil {
					p.err = err
				} else {
					p.track = tags.Track(f.Path)
				}
				select {
				case out <- p:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(out)
		return workers.Wait()
	})

	report := &Report{}
	var walkErr error
	g.Go(func() error {
		batch := make([]*domain.Track, 0, indexBatchSize)
		for p := range out {
			if p.walkErr {
				walkErr = p.err
				continue
			}
			report.Scanned++
			if p.err != nil {
				report.Failed++
				im.logger.Warn("skipping unreadable file", "path", p.path, "error", p.err)
				continue
			}
			if err := im.store.UpsertTrack(gctx, p.track); err != nil {
				return fmt.Errorf("upsert %s: %w", p.path, err)
			}
			report.Imported++

			batch = append(batch, p.track)
			if len(batch) == indexBatchSize {
				im.indexBatch(gctx, batch)
				batch = batch[:0]
			}
		}
		im.indexBatch(gctx, batch)
		return nil
	})

	if err := g.Wait(); err != nil {
		return report, err
	}
	if walkErr != nil && report.Scanned == 0 {
		return report, fmt.Errorf("walk %s: %w", root, walkErr)
	}

	report.Duration = time.Since(start)
	im.logger.Info("library import finished",
		"root", root,
		"scanned", report.Scanned,
		"imported", report.Imported,
		"failed", report.Failed,
		"duration", report.Duration)
	return report, nil
}

// ImportFile upserts a single file.
func (im *Importer) ImportFile(ctx context.Context, path string) (*domain.Track, error) {
	if !IsMusicFile(path) {
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	tags, err := ReadTags(path)
	if err != nil {
		return nil, err
	}
	track := tags.Track(path)
	if err := im.store.UpsertTrack(ctx, track); err != nil {
		return nil, fmt.Errorf("upsert %s: %w", path, err)
	}
	im.indexBatch(ctx, []*domain.Track{track})
	return track, nil
}

// RemoveFile drops the track stored for path. A path with no track is ignored.
func (im *Importer) RemoveFile(ctx context.Context, path string) error {
	id, err := im.store.DeleteTrackByPath(ctx, path)
	if err != nil {
		if store.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("delete %s: %w", path, err)
	}
	if im.index != nil {
		if err := im.index.DeleteTrack(ctx, id); err != nil {
			im.logger.Warn("failed to remove track from index", "track_id", id, "error", err)
		}
	}
	return nil
}

// indexBatch logs failures instead of returning them.
func (im *Importer) indexBatch(ctx context.Context, tracks []*domain.Track) {
	if im.index == nil || len(tracks) == 0 {
		return
	}
	if err := im.index.IndexTracks(ctx, tracks); err != nil {
		im.logger.Warn("failed to index tracks", "count", len(tracks), "error", err)
	}
}
