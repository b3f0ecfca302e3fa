package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/crate-server/internal/errors"
	"github.com/listenupapp/crate-server/internal/genre"
)

const lateNightGroups = `
[[groups]]
display_name = "Late Night"
description = "After hours"
sort_order = 5
genres = ["Hip Hop", "Jazz", "  "]

[[groups]]
name = "heavy"
display_name = "Heavy"
genres = ["heavy metal", "doom metal"]
`

func writeGroupsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "groups.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGroupSeeds(t *testing.T) {
	seeds, err := LoadGroupSeeds(writeGroupsFile(t, lateNightGroups), nil)
	require.NoError(t, err)
	require.Len(t, seeds, 2)

	assert.Equal(t, "late-night", seeds[0].Name)
	assert.Equal(t, "Late Night", seeds[0].DisplayName)
	assert.Equal(t, 5, seeds[0].SortOrder)
	assert.Equal(t, []string{"hip-hop", "jazz"}, seeds[0].Genres)
	assert.Equal(t, "heavy", seeds[1].Name)
}

func TestLoadGroupSeeds_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no groups", "title = \"nothing\"\n"},
		{"duplicate", "[[groups]]\nname = \"a\"\n[[groups]]\nname = \"a\"\n"},
		{"nameless", "[[groups]]\ngenres = [\"jazz\"]\n"},
		{"bad toml", "[[groups]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadGroupSeeds(writeGroupsFile(t, tt.content), nil)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}

	_, err := LoadGroupSeeds(filepath.Join(t.TempDir(), "missing.toml"), nil)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestGroupService_SeedFromFile(t *testing.T) {
	st := newTestStore(t)
	addTrack(t, st, "/m/1.mp3", "Shook Ones", "Mobb Deep", 95, "hip-hop")
	addTrack(t, st, "/m/2.mp3", "So What", "Miles Davis", 136, "jazz")

	svc := NewGroupService(st, nil, writeGroupsFile(t, lateNightGroups), testLogger())
	ctx := context.Background()

	t.Run("dry run persists nothing", func(t *testing.T) {
		report, err := svc.Seed(ctx, SeedRequest{DryRun: true})
		require.NoError(t, err)
		assert.True(t, report.DryRun)
		assert.Equal(t, 2, report.GroupsCreated)

		groups, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, groups)
	})

	t.Run("seed", func(t *testing.T) {
		report, err := svc.Seed(ctx, SeedRequest{})
		require.NoError(t, err)
		assert.Equal(t, 2, report.GroupsCreated)
		assert.Equal(t, 2, report.MembersLinked)
		assert.Len(t, report.GenresNotFound, 2)

		g, err := svc.Get(ctx, "late-night")
		require.NoError(t, err)
		assert.Equal(t, "After hours", g.Description)
		assert.ElementsMatch(t, []string{"hip-hop", "jazz"}, g.Members)
	})

	t.Run("reseed updates", func(t *testing.T) {
		report, err := svc.Seed(ctx, SeedRequest{CreateMissing: true})
		require.NoError(t, err)
		assert.Zero(t, report.GroupsCreated)
		assert.Equal(t, 2, report.GroupsUpdated)
		assert.Equal(t, 2, report.GenresCreated)
		assert.Empty(t, report.GenresNotFound)
	})
}

func TestGroupService_SeedBuiltIn(t *testing.T) {
	svc := NewGroupService(newTestStore(t), nil, "", testLogger())

	report, err := svc.Seed(context.Background(), SeedRequest{})
	require.NoError(t, err)
	assert.Equal(t, len(genre.DefaultGroups), report.GroupsCreated)

	groups, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, groups, len(genre.DefaultGroups))
}

func TestGroupService_GetNotFound(t *testing.T) {
	svc := NewGroupService(newTestStore(t), nil, "", testLogger())

	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
