// Package library imports music files into the track store.
package library

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
)

// Extensions lists the file types the importer reads.
var Extensions = []string{".mp3", ".flac", ".m4a", ".ogg"} //nolint:gochecknoglobals // read-only

// IsMusicFile reports whether path has a supported extension.
func IsMusicFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// WalkResult is one music file found under the root, or a walk error.
type WalkResult struct {
	Error   error
	Path    string
	RelPath string
	Size    int64
	ModTime int64
}

// Walker streams music files below a directory.
type Walker struct {
	logger *slog.Logger
}

// NewWalker creates a new walker.
func NewWalker(logger *slog.Logger) *Walker {
	return &Walker{logger: logger}
}

// Walk traverses root and sends every music file on the returned channel.
// Hidden files and directories are skipped. The channel closes when the
// walk completes or ctx is canceled.
func (w *Walker) Walk(ctx context.Context, root string) <-chan WalkResult {
	results := make(chan WalkResult, 100)

	go func() {
		defer close(results)

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err != nil {
				if path == root {
					return err
				}
				w.logger.Error("walk error", "path", path, "error", err)
				return nil
			}

			if path != root && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !IsMusicFile(path) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				w.logger.Error("failed to get file info", "path", path, "error", err)
				return nil
			}

			relPath, err := filepath.Rel(root, path)
			if err != nil {
				relPath = path
			}

			select {
			case results <- WalkResult{
				Path:    path,
				RelPath: relPath,
				Size:    info.Size(),
				ModTime: info.ModTime().UnixMilli(),
			}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})

		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("walk failed", "root", root, "error", err)
			select {
			case results <- WalkResult{Path: root, Error: err}:
			case <-ctx.Done():
			}
		}
	}()

	return results
}
