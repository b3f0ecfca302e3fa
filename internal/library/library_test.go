package library

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/store/sqlite"
)

type frame struct{ id, text string }

// writeMP3 writes an ID3v2.3 tag with Latin-1 text frames followed by
// zero padding standing in for audio.
func writeMP3(t *testing.T, path string, frames ...frame) {
	t.Helper()

	var body bytes.Buffer
	for _, f := range frames {
		payload := append([]byte{0}, []byte(f.text)...)
		body.WriteString(f.id)
		_ = binary.Write(&body, binary.BigEndian, uint32(len(payload)))
		body.Write([]byte{0, 0})
		body.Write(payload)
	}

	size := body.Len()
	header := []byte{'I', 'D', '3', 3, 0, 0,
		byte(size >> 21 & 0x7f), byte(size >> 14 & 0x7f), byte(size >> 7 & 0x7f), byte(size & 0x7f)}

	var file bytes.Buffer
	file.Write(header)
	file.Write(body.Bytes())
	file.Write(make([]byte, 256))

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, file.Bytes(), 0o644))
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIsMusicFile(t *testing.T) {
	for path, want := range map[string]bool{
		"a/b/song.mp3":   true,
		"song.FLAC":      true,
		"song.m4a":       true,
		"song.ogg":       true,
		"cover.jpg":      false,
		"notes.txt":      false,
		"no-extension":   false,
		"archive.mp3.gz": false,
	} {
		assert.Equal(t, want, IsMusicFile(path), path)
	}
}

func TestReadTags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "01 - Alison.mp3")
	writeMP3(t, path,
		frame{"TIT2", "Alison"},
		frame{"TPE1", "Slowdive"},
		frame{"TALB", "Souvlaki"},
		frame{"TYER", "1993"},
		frame{"TCON", "Shoegaze; Dream Pop/Indie Rock"},
		frame{"TBPM", "127.6"},
	)

	tags, err := ReadTags(path)
	require.NoError(t, err)
	assert.Equal(t, "Alison", tags.Title)
	assert.Equal(t, "Slowdive", tags.Artist)
	assert.Equal(t, "Souvlaki", tags.Album)
	assert.Equal(t, 1993, tags.Year)
	assert.Equal(t, 128, tags.BPM)
	assert.Equal(t, []string{"Shoegaze", "Dream Pop", "Indie Rock"}, tags.Genres)

	track := tags.Track(path)
	assert.Equal(t, path, track.Path)
	assert.Equal(t, "Slowdive", track.ArtistName)
}

func TestReadTags_KeepsAliasWithSlash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mp3")
	writeMP3(t, path, frame{"TIT2", "Track"}, frame{"TCON", "Hip-Hop/Rap"})

	tags, err := ReadTags(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hip-Hop/Rap"}, tags.Genres)
}

func TestReadTags_TitleFallback(t *testing.T) {
	dir := t.TempDir()

	tagged := filepath.Join(dir, "Untitled Jam.mp3")
	writeMP3(t, tagged, frame{"TPE1", "Someone"})
	tags, err := ReadTags(tagged)
	require.NoError(t, err)
	assert.Equal(t, "Untitled Jam", tags.Title)
	assert.Zero(t, tags.BPM)

	bare := filepath.Join(dir, "Field Recording.mp3")
	require.NoError(t, os.WriteFile(bare, make([]byte, 300), 0o644))
	tags, err = ReadTags(bare)
	require.NoError(t, err)
	assert.Equal(t, "Field Recording", tags.Title)
	assert.Empty(t, tags.Artist)
}

func TestParseBPM(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{"120", 120},
		{" 95.5 ", 96},
		{"120\x00", 120},
		{"fast", 0},
		{"-5", 0},
		{"", 0},
		{128, 128},
		{int64(90), 90},
		{uint16(174), 174},
		{[]byte("88"), 88},
		{nil, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseBPM(tt.in), "%#v", tt.in)
	}

	assert.Equal(t, 140, rawBPM(map[string]any{"bpm": "140"}))
	assert.Equal(t, 100, rawBPM(map[string]any{"tmpo": 100}))
	assert.Equal(t, 0, rawBPM(map[string]any{"TBPM": "0"}))
}

func TestWalker_Walk(t *testing.T) {
	dir := t.TempDir()
	writeMP3(t, filepath.Join(dir, "a.mp3"), frame{"TIT2", "A"})
	writeMP3(t, filepath.Join(dir, "sub", "b.mp3"), frame{"TIT2", "B"})
	writeMP3(t, filepath.Join(dir, ".hidden", "c.mp3"), frame{"TIT2", "C"})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.jpg"), []byte("jpg"), 0o644))

	var rel []string
	for r := range NewWalker(discard()).Walk(context.Background(), dir) {
		require.NoError(t, r.Error)
		rel = append(rel, r.RelPath)
	}
	assert.ElementsMatch(t, []string{"a.mp3", filepath.Join("sub", "b.mp3")}, rel)
}

func TestWalker_MissingRoot(t *testing.T) {
	var errs int
	for r := range NewWalker(discard()).Walk(context.Background(), filepath.Join(t.TempDir(), "nope")) {
		if r.Error != nil {
			errs++
		}
	}
	assert.Equal(t, 1, errs)
}

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[int64]string
	deleted []int64
}

func (f *fakeIndex) IndexTracks(_ context.Context, tracks []*domain.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.indexed == nil {
		f.indexed = make(map[int64]string)
	}
	for _, t := range tracks {
		f.indexed[t.ID] = t.Title
	}
	return nil
}

func (f *fakeIndex) DeleteTrack(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "crate.db"), discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestImporter_Import(t *testing.T) {
	ctx := context.Background()
	music := t.TempDir()
	writeMP3(t, filepath.Join(music, "Slowdive", "Alison.mp3"),
		frame{"TIT2", "Alison"}, frame{"TPE1", "Slowdive"}, frame{"TCON", "Shoegaze"}, frame{"TBPM", "120"})
	writeMP3(t, filepath.Join(music, "Ride", "Vapour Trail.mp3"),
		frame{"TIT2", "Vapour Trail"}, frame{"TPE1", "Ride"}, frame{"TCON", "shoegaze;Alternative Rock"})
	require.NoError(t, os.WriteFile(filepath.Join(music, "broken.mp3"), []byte("tiny"), 0o644))

	st := newTestStore(t)
	idx := &fakeIndex{}
	im := NewImporter(st, idx, discard())

	report, err := im.Import(ctx, music)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 1, report.Failed)

	n, err := st.CountTracks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, idx.indexed, 2)

	alison, err := st.GetTrackByPath(ctx, filepath.Join(music, "Slowdive", "Alison.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "Slowdive", alison.ArtistName)
	assert.Equal(t, 120, alison.BPM)
	assert.Equal(t, []string{"Shoegaze"}, alison.Genres)

	// Re-import is an update, not a duplicate.
	report, err = im.Import(ctx, music)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	n, err = st.CountTracks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestImporter_ImportMissingRoot(t *testing.T) {
	im := NewImporter(newTestStore(t), nil, discard())
	_, err := im.Import(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestImporter_FileLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	idx := &fakeIndex{}
	im := NewImporter(st, idx, discard())

	path := filepath.Join(t.TempDir(), "Lush - Sweetness and Light.mp3")
	writeMP3(t, path, frame{"TIT2", "Sweetness and Light"}, frame{"TPE1", "Lush"})

	track, err := im.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.NotZero(t, track.ID)
	assert.Equal(t, "Sweetness and Light", idx.indexed[track.ID])

	_, err = im.ImportFile(ctx, filepath.Join(t.TempDir(), "cover.jpg"))
	assert.Error(t, err)

	require.NoError(t, im.RemoveFile(ctx, path))
	assert.Equal(t, []int64{track.ID}, idx.deleted)

	// Second removal is a no-op.
	require.NoError(t, im.RemoveFile(ctx, path))
	assert.Len(t, idx.deleted, 1)
}
