package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/lastfm"
	"github.com/listenupapp/crate-server/internal/normalize"
)

// MaxTags caps how many top tags become artist genres.
const MaxTags = 10

// Source supplies remote similarity and tag data.
type Source interface {
	SimilarArtists(ctx context.Context, artist string, limit int) ([]lastfm.SimilarArtist, error)
	TopTags(ctx context.Context, artist string) ([]lastfm.Tag, error)
}

// Store persists enrichment results.
type Store interface {
	ListArtists(ctx context.Context) ([]*domain.Artist, error)
	ListArtistsToEnrich(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Artist, error)
	SetSimilarArtists(ctx context.Context, artistID int64, similar []domain.SimilarArtist) error
	SetArtistGenres(ctx context.Context, artistID int64, tags []string) error
	MarkArtistEnriched(ctx context.Context, id int64, lastfmURL, mbid string, at time.Time) error
}

// Options tune a pipeline.
type Options struct {
	// MaxAge is how long an enrichment stays fresh.
	MaxAge       time.Duration
	SimilarLimit int
	Threshold    float64
}

// Report summarizes one run.
type Report struct {
	Processed     int      `json:"processed"`
	Enriched      int      `json:"enriched"`
	Failed        int      `json:"failed"`
	SimilarLinked int      `json:"similar_linked"`
	TagsStored    int      `json:"tags_stored"`
	FailedArtists []string `json:"failed_artists,omitempty"`
}

// Pipeline enriches stale artists one at a time.
type Pipeline struct {
	source Source
	store  Store
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

// NewPipeline creates a pipeline.
func NewPipeline(source Source, st Store, opts Options, logger *slog.Logger) *Pipeline {
	if opts.MaxAge <= 0 {
		opts.MaxAge = 30 * 24 * time.Hour
	}
	if opts.SimilarLimit <= 0 {
		opts.SimilarLimit = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{source: source, store: st, opts: opts, logger: logger, now: time.Now}
}

// Run enriches up to limit stale artists. limit <= 0 means all of them.
// A failure on one artist is logged and counted; only context cancellation
// and store listing errors end the run early.
func (p *Pipeline) Run(ctx context.Context, limit int) (*Report, error) {
	started := p.now()
	pending, err := p.store.ListArtistsToEnrich(ctx, started.Add(-p.opts.MaxAge), limit)
	if err != nil {
		return nil, fmt.Errorf("list artists to enrich: %w", err)
	}
	report := &Report{}
	if len(pending) == 0 {
		return report, nil
	}

	all, err := p.store.ListArtists(ctx)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	matcher := NewMatcher(all, p.opts.Threshold)

	for _, artist := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Processed++

		linked, tags, err := p.enrichOne(ctx, matcher, artist)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return report, err
			}
			report.Failed++
			report.FailedArtists = append(report.FailedArtists, artist.Name)
			p.logger.Warn("artist enrichment failed", "artist", artist.Name, "error", err)
			continue
		}
		report.Enriched++
		report.SimilarLinked += linked
		report.TagsStored += tags
	}

	p.logger.Info("enrichment finished",
		"processed", report.Processed,
		"enriched", report.Enriched,
		"failed", report.Failed,
		"similar_linked", report.SimilarLinked,
		"duration", p.now().Sub(started))
	return report, nil
}

func (p *Pipeline) enrichOne(ctx context.Context, matcher *Matcher, artist *domain.Artist) (int, int, error) {
	remote, err := p.source.SimilarArtists(ctx, artist.Name, p.opts.SimilarLimit)
	if err != nil {
		return 0, 0, err
	}
	topTags, err := p.source.TopTags(ctx, artist.Name)
	if err != nil {
		return 0, 0, err
	}

	similar := linkSimilar(matcher, artist.ID, remote)
	if err := p.store.SetSimilarArtists(ctx, artist.ID, similar); err != nil {
		return 0, 0, fmt.Errorf("store similar artists: %w", err)
	}

	tags := cleanTags(topTags)
	if err := p.store.SetArtistGenres(ctx, artist.ID, tags); err != nil {
		return 0, 0, fmt.Errorf("store artist genres: %w", err)
	}

	if err := p.store.MarkArtistEnriched(ctx, artist.ID, lastfm.ArtistURL(artist.Name), "", p.now()); err != nil {
		return 0, 0, fmt.Errorf("mark enriched: %w", err)
	}

	p.logger.Debug("artist enriched",
		"artist", artist.Name,
		"remote_similar", len(remote),
		"linked", len(similar),
		"tags", len(tags))
	return len(similar), len(tags), nil
}

// linkSimilar maps remote names onto local artists, keeping the best score per artist.
func linkSimilar(matcher *Matcher, selfID int64, remote []lastfm.SimilarArtist) []domain.SimilarArtist {
	index := make(map[int64]int)
	var out []domain.SimilarArtist
	for _, r := range remote {
		m, ok := matcher.Find(r.Name, selfID)
		if !ok {
			continue
		}
		if i, seen := index[m.Artist.ID]; seen {
			out[i].Match = max(out[i].Match, r.Match)
			continue
		}
		index[m.Artist.ID] = len(out)
		out = append(out, domain.SimilarArtist{
			ArtistID:        selfID,
			SimilarArtistID: m.Artist.ID,
			Name:            m.Artist.Name,
			Match:           r.Match,
		})
	}
	return out
}

func cleanTags(tags []lastfm.Tag) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, min(len(tags), MaxTags))
	for _, t := range tags {
		name := normalize.Sanitize(t.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}
