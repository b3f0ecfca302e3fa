package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	domainerrors "github.com/listenupapp/crate-server/internal/errors"
	"github.com/listenupapp/crate-server/internal/library"
	"github.com/listenupapp/crate-server/internal/watcher"
)

// LibraryService imports music files and keeps the store in step with the
// music directory.
type LibraryService struct {
	importer  *library.Importer
	groups    *GroupService
	musicPath string
	logger    *slog.Logger
}

// NewLibraryService creates a library service. groups may be nil, in which
// case groups-file changes are ignored.
func NewLibraryService(importer *library.Importer, groups *GroupService, musicPath string, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		importer:  importer,
		groups:    groups,
		musicPath: musicPath,
		logger:    logger,
	}
}

// MusicPath returns the configured music directory.
func (s *LibraryService) MusicPath() string {
	return s.musicPath
}

// Import walks dir, or the configured music directory when dir is empty.
func (s *LibraryService) Import(ctx context.Context, dir string) (*library.Report, error) {
	if dir == "" {
		dir = s.musicPath
	}
	if dir == "" {
		return nil, domainerrors.Validation("no music directory given and none configured")
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domainerrors.NotFoundf("music directory %s does not exist", dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, domainerrors.Validationf("%s is not a directory", dir)
	}

	return s.importer.Import(ctx, dir)
}

// WatchInclude reports whether the watcher should emit events for path:
// music files and the groups file.
func (s *LibraryService) WatchInclude(path string) bool {
	return library.IsMusicFile(path) || s.isGroupsFile(path)
}

// HandleEvent applies one watcher event. A changed groups file reseeds the
// groups; music files are re-imported or removed.
func (s *LibraryService) HandleEvent(ctx context.Context, event watcher.Event) error {
	if s.isGroupsFile(event.Path) {
		if event.Type == watcher.EventRemoved {
			s.logger.Warn("groups file removed; keeping existing groups", "path", event.Path)
			return nil
		}
		_, err := s.groups.Seed(ctx, SeedRequest{})
		return err
	}

	if !library.IsMusicFile(event.Path) {
		return nil
	}

	switch event.Type {
	case watcher.EventAdded, watcher.EventModified:
		track, err := s.importer.ImportFile(ctx, event.Path)
		if err != nil {
			return err
		}
		s.logger.Debug("track imported", "path", event.Path, "track_id", track.ID, "event", event.Type.String())
	case watcher.EventRemoved:
		if err := s.importer.RemoveFile(ctx, event.Path); err != nil {
			return err
		}
		s.logger.Debug("track removed", "path", event.Path)
	}
	return nil
}

func (s *LibraryService) isGroupsFile(path string) bool {
	if s.groups == nil || s.groups.GroupsFile() == "" {
		return false
	}
	return filepath.Clean(path) == filepath.Clean(s.groups.GroupsFile())
}
