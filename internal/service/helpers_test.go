package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/store/sqlite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "crate.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func addTrack(t *testing.T, st *sqlite.Store, path, title, artist string, bpm int, genres ...string) *domain.Track {
	t.Helper()
	tr := &domain.Track{Title: title, ArtistName: artist, BPM: bpm, Path: path, Genres: genres}
	require.NoError(t, st.UpsertTrack(context.Background(), tr))
	return tr
}
