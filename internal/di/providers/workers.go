package providers

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/samber/do/v2"

	"github.com/listenupapp/crate-server/internal/config"
	"github.com/listenupapp/crate-server/internal/logger"
	"github.com/listenupapp/crate-server/internal/service"
	"github.com/listenupapp/crate-server/internal/watcher"
)

// WatcherHandle wraps the file watcher with shutdown capability. Watcher is
// nil when watching is disabled.
type WatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *WatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideWatcher provides the music directory watcher. Changed music files
// are re-imported and a changed groups file is re-seeded.
func ProvideWatcher(i do.Injector) (*WatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	librarySvc := do.MustInvoke[*service.LibraryService](i)
	groupSvc := do.MustInvoke[*service.GroupService](i)

	if !cfg.Library.Watch || cfg.Library.MusicPath == "" {
		log.Info("File watcher disabled")
		return &WatcherHandle{}, nil
	}

	w, err := watcher.New(log.Logger, watcher.Options{
		IgnoreHidden: true,
		Include:      librarySvc.WatchInclude,
	})
	if err != nil {
		return nil, err
	}

	paths := []string{cfg.Library.MusicPath}
	if f := groupSvc.GroupsFile(); f != "" {
		if dir := filepath.Dir(f); outside(cfg.Library.MusicPath, dir) {
			paths = append(paths, dir)
		}
	}
	for _, p := range paths {
		if err := w.Watch(p); err != nil {
			_ = w.Stop()
			return nil, err
		}
		log.Info("Watching path", "path", p)
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("File watcher error", "error", err)
		}
	}()
	go w.Dispatch(ctx, librarySvc.HandleEvent)

	log.Info("File watcher started", "paths", len(paths))

	return &WatcherHandle{Watcher: w, cancel: cancel}, nil
}

// outside reports whether dir is not under root.
func outside(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	return err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
