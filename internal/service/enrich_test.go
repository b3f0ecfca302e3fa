package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/crate-server/internal/enrich"
	domainerrors "github.com/listenupapp/crate-server/internal/errors"
	"github.com/listenupapp/crate-server/internal/lastfm"
)

type stubSource struct {
	similar map[string][]lastfm.SimilarArtist
}

func (s stubSource) SimilarArtists(_ context.Context, artist string, _ int) ([]lastfm.SimilarArtist, error) {
	return s.similar[artist], nil
}

func (stubSource) TopTags(context.Context, string) ([]lastfm.Tag, error) {
	return []lastfm.Tag{{Name: "shoegaze"}}, nil
}

func TestEnrichService_Disabled(t *testing.T) {
	st := newTestStore(t)
	svc := NewEnrichService(enrich.NewPipeline(stubSource{}, st, enrich.Options{}, testLogger()), false, testLogger())

	assert.False(t, svc.Enabled())
	_, err := svc.Run(context.Background(), EnrichRequest{})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestEnrichService_Run(t *testing.T) {
	st := newTestStore(t)
	addTrack(t, st, "/m/1.flac", "Alison", "Slowdive", 0)
	addTrack(t, st, "/m/2.flac", "Vapour Trail", "Ride", 0)

	src := stubSource{similar: map[string][]lastfm.SimilarArtist{
		"Slowdive": {{Name: "Ride", Match: 0.9}},
	}}
	svc := NewEnrichService(enrich.NewPipeline(src, st, enrich.Options{Threshold: 0.85}, testLogger()), true, testLogger())
	ctx := context.Background()

	_, err := svc.Run(ctx, EnrichRequest{Limit: -1})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	report, err := svc.Run(ctx, EnrichRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 2, report.Enriched)
	assert.Equal(t, 1, report.SimilarLinked)

	again, err := svc.Run(ctx, EnrichRequest{})
	require.NoError(t, err)
	assert.Zero(t, again.Processed, "fresh artists are skipped")
}
