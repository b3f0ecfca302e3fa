package sqlite

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/store"
)

func TestUpsertArtist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.UpsertArtist(ctx, "Sigur Rós")
	if err != nil {
		t.Fatalf("UpsertArtist: %v", err)
	}
	b, err := s.UpsertArtist(ctx, "sigur ros")
	if err != nil {
		t.Fatalf("UpsertArtist: %v", err)
	}
	if a.ID != b.ID || b.Name != "Sigur Rós" {
		t.Errorf("expected same artist, got %+v and %+v", a, b)
	}

	if _, err := s.UpsertArtist(ctx, "  "); !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestListArtistsToEnrich(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fresh, _ := s.UpsertArtist(ctx, "Fresh")
	stale, _ := s.UpsertArtist(ctx, "Stale")
	never, _ := s.UpsertArtist(ctx, "Never")

	nowTime := time.Now()
	if err := s.MarkArtistEnriched(ctx, fresh.ID, "https://last.fm/fresh", "", nowTime); err != nil {
		t.Fatalf("MarkArtistEnriched: %v", err)
	}
	if err := s.MarkArtistEnriched(ctx, stale.ID, "", "", nowTime.Add(-48*time.Hour)); err != nil {
		t.Fatalf("MarkArtistEnriched: %v", err)
	}

	artists, err := s.ListArtistsToEnrich(ctx, nowTime.Add(-24*time.Hour), 0)
	if err != nil {
		t.Fatalf("ListArtistsToEnrich: %v", err)
	}
	var ids []int64
	for _, a := range artists {
		ids = append(ids, a.ID)
	}
	if want := []int64{never.ID, stale.ID}; !slices.Equal(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}

	limited, _ := s.ListArtistsToEnrich(ctx, nowTime.Add(-24*time.Hour), 1)
	if len(limited) != 1 {
		t.Errorf("limit ignored: got %d", len(limited))
	}

	got, _ := s.GetArtist(ctx, fresh.ID)
	if got.LastFMURL != "https://last.fm/fresh" || got.EnrichedAt == nil {
		t.Errorf("enrichment not recorded: %+v", got)
	}
}

func TestMarkArtistEnriched_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.MarkArtistEnriched(context.Background(), 99, "", "", time.Now())
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestArtistGenresAndSimilar(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, _ := s.UpsertArtist(ctx, "Slowdive")
	b, _ := s.UpsertArtist(ctx, "Ride")
	c, _ := s.UpsertArtist(ctx, "Lush")

	if err := s.SetArtistGenres(ctx, a.ID, []string{"shoegaze", "dream pop", "shoegaze"}); err != nil {
		t.Fatalf("SetArtistGenres: %v", err)
	}
	tags, err := s.GetArtistGenres(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetArtistGenres: %v", err)
	}
	if want := []string{"shoegaze", "dream pop"}; !slices.Equal(tags, want) {
		t.Errorf("tags = %v, want %v", tags, want)
	}

	err = s.SetSimilarArtists(ctx, a.ID, []domain.SimilarArtist{
		{SimilarArtistID: b.ID, Match: 0.7},
		{SimilarArtistID: c.ID, Match: 0.9},
		{SimilarArtistID: a.ID, Match: 1},
	})
	if err != nil {
		t.Fatalf("SetSimilarArtists: %v", err)
	}

	similar, err := s.GetSimilarArtists(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetSimilarArtists: %v", err)
	}
	if len(similar) != 2 || similar[0].Name != "Lush" || similar[1].Name != "Ride" {
		t.Errorf("unexpected similar: %+v", similar)
	}
}
