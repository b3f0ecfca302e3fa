package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/crate-server/internal/domain"
)

func setupTestIndex(t *testing.T) *TrackIndex {
	t.Helper()

	index, err := NewTrackIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func sampleTracks() []*domain.Track {
	return []*domain.Track{
		{ID: 1, Title: "When the Sun Hits", ArtistName: "Slowdive", Album: "Souvlaki", BPM: 98, Genres: []string{"Shoegaze", "Dream Pop"}},
		{ID: 2, Title: "Vapour Trail", ArtistName: "Ride", Album: "Nowhere", BPM: 132, Genres: []string{"Shoe Gaze"}},
		{ID: 3, Title: "Your Hand in Mine", ArtistName: "Explosions in the Sky", Album: "The Earth Is Not a Cold Dead Place", BPM: 120, Genres: []string{"Post Rock"}},
		{ID: 4, Title: "Sunset Boulevard", ArtistName: "Some Band", Genres: []string{"Rock"}},
		{ID: 5, Title: "Hyperballad", ArtistName: "Björk", Album: "Post", BPM: 115, Genres: []string{"Electronica"}},
	}
}

func seed(t *testing.T, index *TrackIndex) {
	t.Helper()
	require.NoError(t, index.IndexTracks(context.Background(), sampleTracks()))
}

func hitIDs(r *Result) []int64 {
	ids := make([]int64, 0, len(r.Hits))
	for _, h := range r.Hits {
		ids = append(ids, h.TrackID)
	}
	return ids
}

func TestNewTrackIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
	assert.NoError(t, index.Ping())
}

func TestTrackToDocument(t *testing.T) {
	doc := TrackToDocument(&domain.Track{
		ID:         42,
		Title:      "Alison",
		ArtistName: "Slowdive",
		Genres:     []string{"Shoe Gaze", "shoegaze", "Dream Pop", "  "},
		BPM:        0,
	}, nil)

	assert.Equal(t, "42", doc.ID)
	assert.Equal(t, []string{"shoegaze", "dream-pop"}, doc.Genres)

	m := doc.ToMap()
	assert.Equal(t, "Alison", m["title"])
	assert.NotContains(t, m, "bpm")
	assert.NotContains(t, m, "album")
}

func TestSearch_Title(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	res, err := index.Search(context.Background(), Params{Query: "vapour trail"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, int64(2), res.Hits[0].TrackID)
	assert.Equal(t, "Ride", res.Hits[0].Artist)
	assert.Equal(t, 132, res.Hits[0].BPM)
}

func TestSearch_Artist(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	res, err := index.Search(context.Background(), Params{Query: "slowdive"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, hitIDs(res))
}

func TestSearch_GenreText(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	// "Shoe-Gaze" normalizes to the indexed canonical term.
	res, err := index.Search(context.Background(), Params{Query: "Shoe-Gaze"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, hitIDs(res))
}

func TestSearch_Prefix(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	res, err := index.Search(context.Background(), Params{Query: "hyperbal"})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(res), int64(5))
}

func TestSearch_GenreFilter(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	// Keyword genres: "rock" must not match "post-rock".
	res, err := index.Search(context.Background(), Params{Query: "sun", Genres: []string{"Rock"}})
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, hitIDs(res))
}

func TestSearch_BPMFilter(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	res, err := index.Search(context.Background(), Params{Query: "sun", MinBPM: 90, MaxBPM: 100})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, hitIDs(res))
}

func TestSearch_QueryTooShort(t *testing.T) {
	index := setupTestIndex(t)

	for _, q := range []string{"", " ", "a", " ö "} {
		_, err := index.Search(context.Background(), Params{Query: q})
		assert.ErrorIs(t, err, ErrQueryTooShort, "query %q", q)
	}
}

func TestSearch_DefaultLimit(t *testing.T) {
	index := setupTestIndex(t)

	tracks := make([]*domain.Track, 0, 40)
	for i := int64(1); i <= 40; i++ {
		tracks = append(tracks, &domain.Track{ID: i, Title: "Drone Study", ArtistName: "Ensemble"})
	}
	require.NoError(t, index.IndexTracks(context.Background(), tracks))

	res, err := index.Search(context.Background(), Params{Query: "drone"})
	require.NoError(t, err)
	assert.Len(t, res.Hits, DefaultLimit)
	assert.Equal(t, uint64(40), res.Total)
}

func TestSearch_Facets(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	res, err := index.Search(context.Background(), Params{Query: "shoegaze", IncludeFacets: true})
	require.NoError(t, err)
	values := make([]string, 0, len(res.Genres))
	for _, f := range res.Genres {
		values = append(values, f.Value)
	}
	assert.Contains(t, values, "shoegaze")
}

func TestDeleteTrack(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	require.NoError(t, index.DeleteTrack(context.Background(), 2))
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	res, err := index.Search(context.Background(), Params{Query: "vapour"})
	require.NoError(t, err)
	assert.NotContains(t, hitIDs(res), int64(2))
}

func TestRebuild(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	require.NoError(t, index.Rebuild(context.Background(), sampleTracks()[:2]))
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()

	index, err := NewTrackIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, index.IndexTracks(context.Background(), sampleTracks()))
	require.NoError(t, index.Close())

	reopened, err := NewTrackIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)
}
