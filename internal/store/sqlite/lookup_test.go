package sqlite

import (
	"context"
	"slices"
	"testing"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/genre"
	"github.com/listenupapp/crate-server/internal/playlist"
)

type libraryFixture struct {
	blueInGreen, soWhat, paranoid, loveSong, lovesong2, percent int64
}

func seedLibrary(t *testing.T, s *Store) libraryFixture {
	t.Helper()
	ctx := context.Background()

	f := libraryFixture{
		blueInGreen: addTrack(t, s, "/m/1.flac", "Blue in Green", "Miles Davis", 60, "Jazz"),
		soWhat:      addTrack(t, s, "/m/2.flac", "So What", "Miles Davis", 136, "Cool Jazz"),
		paranoid:    addTrack(t, s, "/m/3.flac", "Paranoid", "Black Sabbath", 163, "Heavy Metal"),
		loveSong:    addTrack(t, s, "/m/4.flac", "Love Song", "The Cure", 0),
		lovesong2:   addTrack(t, s, "/m/5.flac", "Lovesong 2", "The Cure", 100, "Rock"),
		percent:     addTrack(t, s, "/m/6.flac", "100%_love", "Low", 80),
	}

	cure, err := s.GetArtistByName(ctx, "The Cure")
	if err != nil {
		t.Fatalf("GetArtistByName: %v", err)
	}
	if err := s.SetArtistGenres(ctx, cure.ID, []string{"Post Punk", "New Wave"}); err != nil {
		t.Fatalf("SetArtistGenres: %v", err)
	}

	miles, _ := s.GetArtistByName(ctx, "Miles Davis")
	sabbath, _ := s.GetArtistByName(ctx, "Black Sabbath")
	low, _ := s.GetArtistByName(ctx, "Low")
	err = s.SetSimilarArtists(ctx, miles.ID, []domain.SimilarArtist{
		{SimilarArtistID: sabbath.ID, Match: 0.4},
		{SimilarArtistID: low.ID, Match: 0.9},
		{SimilarArtistID: miles.ID, Match: 1},
	})
	if err != nil {
		t.Fatalf("SetSimilarArtists: %v", err)
	}
	return f
}

func sorted(set playlist.TrackSet) []int64 {
	return set.Sorted()
}

func TestTracksByTitle(t *testing.T) {
	s := newTestStore(t)
	f := seedLibrary(t, s)
	ctx := context.Background()

	tests := []struct {
		title string
		want  []int64
	}{
		{"love", []int64{f.loveSong, f.lovesong2, f.percent}},
		{"LOVE", []int64{f.loveSong, f.lovesong2, f.percent}},
		{"%_", []int64{f.percent}},
		{"nothing", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got, err := s.TracksByTitle(ctx, tt.title)
			if err != nil {
				t.Fatalf("TracksByTitle: %v", err)
			}
			if !slices.Equal(sorted(got), tt.want) {
				t.Errorf("got %v, want %v", sorted(got), tt.want)
			}
		})
	}
}

func TestTracksByGenres_ArtistFallback(t *testing.T) {
	s := newTestStore(t)
	f := seedLibrary(t, s)
	ctx := context.Background()

	tests := []struct {
		name   string
		genres []string
		want   []int64
	}{
		{"substring", []string{"jazz"}, []int64{f.blueInGreen, f.soWhat}},
		{"or across terms", []string{"jazz", "metal"}, []int64{f.blueInGreen, f.soWhat, f.paranoid}},
		// The Cure's tags apply only to the untagged track.
		{"artist fallback", []string{"post punk"}, []int64{f.loveSong}},
		{"own tags win", []string{"rock"}, []int64{f.lovesong2}},
		{"blank terms", []string{" "}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.TracksByGenres(ctx, tt.genres)
			if err != nil {
				t.Fatalf("TracksByGenres: %v", err)
			}
			if !slices.Equal(sorted(got), tt.want) {
				t.Errorf("got %v, want %v", sorted(got), tt.want)
			}
		})
	}
}

func TestTracksByGenres_AfterNormalization(t *testing.T) {
	s := newTestStore(t)
	f := seedLibrary(t, s)
	ctx := context.Background()

	names, err := s.ListGenreNames(ctx)
	if err != nil {
		t.Fatalf("ListGenreNames: %v", err)
	}
	run := &domain.NormalizationRun{ID: "run-test"}
	if err := s.ApplyNormalization(ctx, genre.BuildNormalizationMap(names), run); err != nil {
		t.Fatalf("ApplyNormalization: %v", err)
	}

	got, err := s.TracksByGenres(ctx, []string{"Heavy Metal"})
	if err != nil {
		t.Fatalf("TracksByGenres: %v", err)
	}
	if want := []int64{f.paranoid}; !slices.Equal(sorted(got), want) {
		t.Errorf("got %v, want %v", sorted(got), want)
	}

	got, err = s.TracksByExactGenres(ctx, []string{"post-punk"})
	if err != nil {
		t.Fatalf("TracksByExactGenres: %v", err)
	}
	if want := []int64{f.loveSong}; !slices.Equal(sorted(got), want) {
		t.Errorf("got %v, want %v", sorted(got), want)
	}
}

func TestTracksByBPM(t *testing.T) {
	s := newTestStore(t)
	f := seedLibrary(t, s)

	got, err := s.TracksByBPM(context.Background(), 60, 100)
	if err != nil {
		t.Fatalf("TracksByBPM: %v", err)
	}
	if want := []int64{f.blueInGreen, f.lovesong2, f.percent}; !slices.Equal(sorted(got), want) {
		t.Errorf("got %v, want %v", sorted(got), want)
	}
}

func TestTracksByArtists(t *testing.T) {
	s := newTestStore(t)
	f := seedLibrary(t, s)
	ctx := context.Background()

	tests := []struct {
		name    string
		artists []string
		want    []int64
	}{
		{"exact name", []string{"the cure"}, []int64{f.loveSong, f.lovesong2}},
		{"name key", []string{"Cure"}, []int64{f.loveSong, f.lovesong2}},
		{"several", []string{"Low", "Black Sabbath"}, []int64{f.paranoid, f.percent}},
		{"unknown", []string{"Nobody"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.TracksByArtists(ctx, tt.artists)
			if err != nil {
				t.Fatalf("TracksByArtists: %v", err)
			}
			if !slices.Equal(sorted(got), tt.want) {
				t.Errorf("got %v, want %v", sorted(got), tt.want)
			}
		})
	}
}

func TestTracksBySimilarArtists_ExcludesSeed(t *testing.T) {
	s := newTestStore(t)
	f := seedLibrary(t, s)

	got, err := s.TracksBySimilarArtists(context.Background(), "miles davis")
	if err != nil {
		t.Fatalf("TracksBySimilarArtists: %v", err)
	}
	if want := []int64{f.paranoid, f.percent}; !slices.Equal(sorted(got), want) {
		t.Errorf("got %v, want %v", sorted(got), want)
	}
}

func TestComposerOverStore(t *testing.T) {
	s := newTestStore(t)
	f := seedLibrary(t, s)
	ctx := context.Background()

	if _, err := s.SeedGroups(ctx, []genre.GroupSeed{
		{Name: "rock", DisplayName: "Rock", Genres: []string{"rock", "heavy metal"}},
	}, SeedOptions{}); err != nil {
		t.Fatalf("SeedGroups: %v", err)
	}

	c := playlist.NewComposer(s)

	got, err := c.Build(ctx, playlist.Filters{
		Genres:      []string{"jazz"},
		GenreGroups: []string{"Rock"},
		Shuffle:     playlist.Bool(false),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if want := []int64{f.blueInGreen, f.soWhat, f.paranoid, f.lovesong2}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	got, err = c.Build(ctx, playlist.Filters{
		Genres:      []string{"jazz"},
		GenreGroups: []string{"rock"},
		MinBPM:      playlist.Int(60),
		MaxBPM:      playlist.Int(140),
		Shuffle:     playlist.Bool(false),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if want := []int64{f.blueInGreen, f.soWhat, f.lovesong2}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
