package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/genre"
	"github.com/listenupapp/crate-server/internal/store"
)

func TestApplyNormalization_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	addTrack(t, s, "/m/1.mp3", "A", "X", 0, "Hip Hop", "hiphop", "rock")

	mapping := map[string]string{"Hip Hop": "hip-hop", "hiphop": "hip-hop", "rock": "rock"}

	first := &domain.NormalizationRun{ID: "run-1", TotalGenres: 3}
	if err := s.ApplyNormalization(ctx, mapping, first); err != nil {
		t.Fatalf("ApplyNormalization: %v", err)
	}
	if first.AliasesCreated != 3 {
		t.Errorf("first run created %d aliases, want 3", first.AliasesCreated)
	}

	second := &domain.NormalizationRun{ID: "run-2", TotalGenres: 4}
	if err := s.ApplyNormalization(ctx, mapping, second); err != nil {
		t.Fatalf("ApplyNormalization again: %v", err)
	}
	if second.AliasesCreated != 0 {
		t.Errorf("second run created %d aliases, want 0", second.AliasesCreated)
	}

	if _, err := s.getGenreByName(ctx, "hip-hop"); err != nil {
		t.Errorf("canonical genre not created: %v", err)
	}

	aliases, err := s.ListAliases(ctx, false)
	if err != nil {
		t.Fatalf("ListAliases: %v", err)
	}
	if len(aliases) != 2 {
		t.Fatalf("expected 2 non-identity aliases, got %d", len(aliases))
	}
	for _, a := range aliases {
		if a.CanonicalName != "hip-hop" {
			t.Errorf("alias %s -> %s, want hip-hop", a.RawName, a.CanonicalName)
		}
	}

	all, err := s.ListAliases(ctx, true)
	if err != nil {
		t.Fatalf("ListAliases: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 aliases with identity, got %d", len(all))
	}
}

func TestNormalizationRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := &domain.NormalizationRun{
		ID:            "run-dry",
		DryRun:        true,
		TotalGenres:   4,
		ClustersFound: 1,
		Clusters:      []genre.Cluster{{Canonical: "rock", Variants: []string{"Rock", "rock"}}},
	}
	if err := s.RecordNormalizationRun(ctx, run); err != nil {
		t.Fatalf("RecordNormalizationRun: %v", err)
	}
	if err := s.RecordNormalizationRun(ctx, run); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	runs, err := s.ListNormalizationRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListNormalizationRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if !got.DryRun || got.TotalGenres != 4 || got.ClustersFound != 1 {
		t.Errorf("unexpected run: %+v", got)
	}
	if len(got.Clusters) != 1 || got.Clusters[0].Canonical != "rock" || len(got.Clusters[0].Variants) != 2 {
		t.Errorf("clusters not round-tripped: %+v", got.Clusters)
	}
}

func TestSetAlias_Replaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.SetAlias(ctx, "Britpop!", "pop"); err != nil {
		t.Fatalf("SetAlias: %v", err)
	}
	a, err := s.SetAlias(ctx, "Britpop!", "britpop")
	if err != nil {
		t.Fatalf("SetAlias: %v", err)
	}
	if a.RawName != "Britpop!" || a.CanonicalName != "britpop" {
		t.Errorf("unexpected alias: %+v", a)
	}

	aliases, _ := s.ListAliases(ctx, false)
	if len(aliases) != 1 {
		t.Errorf("expected 1 alias, got %d", len(aliases))
	}
}

func TestSetAlias_RejectsBlankNames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct{ raw, canonical string }{
		{"  ", "rock"},
		{"rock", "\t"},
		{"", ""},
	}
	for _, tt := range tests {
		if _, err := s.SetAlias(ctx, tt.raw, tt.canonical); !errors.Is(err, store.ErrInvalidInput) {
			t.Errorf("SetAlias(%q, %q) error = %v, want ErrInvalidInput", tt.raw, tt.canonical, err)
		}
	}

	aliases, err := s.ListAliases(ctx, false)
	if err != nil {
		t.Fatalf("ListAliases: %v", err)
	}
	if len(aliases) != 0 {
		t.Errorf("expected no aliases, got %+v", aliases)
	}
	genres, err := s.ListGenreNames(ctx)
	if err != nil {
		t.Fatalf("ListGenreNames: %v", err)
	}
	if len(genres) != 0 {
		t.Errorf("expected no genres, got %v", genres)
	}
}

func TestListCanonicalGenres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	addTrack(t, s, "/m/1.mp3", "A", "X", 0, "Hip Hop")
	addTrack(t, s, "/m/2.mp3", "B", "X", 0, "hiphop")
	addTrack(t, s, "/m/3.mp3", "C", "X", 0, "Jazz")

	before, err := s.ListCanonicalGenres(ctx)
	if err != nil {
		t.Fatalf("ListCanonicalGenres: %v", err)
	}
	if len(before) != 3 {
		t.Errorf("expected every genre before normalization, got %d", len(before))
	}

	mapping := genre.BuildNormalizationMap([]string{"Hip Hop", "hiphop", "Jazz"})
	if err := s.ApplyNormalization(ctx, mapping, &domain.NormalizationRun{ID: "run-1"}); err != nil {
		t.Fatalf("ApplyNormalization: %v", err)
	}

	after, err := s.ListCanonicalGenres(ctx)
	if err != nil {
		t.Fatalf("ListCanonicalGenres: %v", err)
	}
	if len(after) != 2 {
		t.Fatalf("expected 2 canonical genres, got %d", len(after))
	}
	if after[0].Name != "hip-hop" || after[0].TrackCount != 2 {
		t.Errorf("first = %+v, want hip-hop with 2 tracks", after[0])
	}
	if after[1].Name != "jazz" || after[1].TrackCount != 1 {
		t.Errorf("second = %+v, want jazz with 1 track", after[1])
	}
}
