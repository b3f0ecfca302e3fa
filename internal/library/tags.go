package library

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/normalize"
)

// Tags is the metadata the importer keeps from a file.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Year   int
	BPM    int
	Genres []string
}

// bpmKeys are raw tag names carrying tempo: ID3v2 TBPM (and v2.2 TBP),
// Vorbis comments and MP4 atoms.
var bpmKeys = []string{"TBPM", "TBP", "bpm", "BPM", "tmpo"} //nolint:gochecknoglobals // read-only

// ReadTags reads tags from the file at path. A file without any tag block
// yields a Tags holding only the title derived from the file name.
func ReadTags(path string) (*Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readTags(f, path)
}

func readTags(r io.ReadSeeker, path string) (*Tags, error) {
	m, err := tag.ReadFrom(r)
	if errors.Is(err, tag.ErrNoTagsFound) {
		return &Tags{Title: titleFromPath(path)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}

	artist := normalize.Sanitize(m.Artist())
	if artist == "" {
		artist = normalize.Sanitize(m.AlbumArtist())
	}

	t := &Tags{
		Title:  normalize.Sanitize(m.Title()),
		Artist: artist,
		Album:  normalize.Sanitize(m.Album()),
		Year:   m.Year(),
		Genres: normalize.GenreTags(m.Genre()),
		BPM:    rawBPM(m.Raw()),
	}
	if t.Title == "" {
		t.Title = titleFromPath(path)
	}
	return t, nil
}

// Track converts tags into a track at path.
func (t *Tags) Track(path string) *domain.Track {
	return &domain.Track{
		Title:      t.Title,
		ArtistName: t.Artist,
		Album:      t.Album,
		Year:       t.Year,
		BPM:        t.BPM,
		Path:       path,
		Genres:     t.Genres,
	}
}

func rawBPM(raw map[string]any) int {
	for _, key := range bpmKeys {
		if v, ok := raw[key]; ok {
			if bpm := parseBPM(v); bpm > 0 {
				return bpm
			}
		}
	}
	return 0
}

// parseBPM accepts the value shapes tag parsers produce: text such as
// "128" or "127.9", or an integer atom. Non-positive values mean unknown.
func parseBPM(v any) int {
	var f float64
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(normalize.Sanitize(x))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case float64:
		f = x
	case []byte:
		return parseBPM(string(x))
	default:
		return 0
	}
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}
