package playlist

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Lookup resolves single filter dimensions to track sets.
// Implementations report storage failures as errors; an empty set means no match.
type Lookup interface {
	// TracksByTitle matches a case-insensitive title substring.
	TracksByTitle(ctx context.Context, title string) (TrackSet, error)
	// TracksByGenres matches any of the genres as a substring of a track's
	// effective genres. Artist genres apply only to tracks without their own.
	TracksByGenres(ctx context.Context, genres []string) (TrackSet, error)
	// ExpandGroup returns the member genres of a group, or none for an unknown group.
	ExpandGroup(ctx context.Context, group string) ([]string, error)
	// TracksByExactGenres matches any of the genres exactly, with the same fallback.
	TracksByExactGenres(ctx context.Context, genres []string) (TrackSet, error)
	// TracksByBPM matches tracks with minBPM <= bpm <= maxBPM.
	TracksByBPM(ctx context.Context, minBPM, maxBPM int) (TrackSet, error)
	// TracksByArtists matches any of the artist names.
	TracksByArtists(ctx context.Context, artists []string) (TrackSet, error)
	// TracksBySimilarArtists matches tracks by artists similar to seed,
	// excluding the seed's own tracks.
	TracksBySimilarArtists(ctx context.Context, seed string) (TrackSet, error)
}

// Composer builds playlists by intersecting filter dimensions.
type Composer struct {
	lookup Lookup

	mu   sync.Mutex
	rand *rand.Rand
}

// Option configures a Composer.
type Option func(*Composer)

// WithRand makes shuffling use r.
func WithRand(r *rand.Rand) Option {
	return func(c *Composer) {
		c.rand = r
	}
}

// NewComposer creates a Composer over lookup.
func NewComposer(lookup Lookup, opts ...Option) *Composer {
	c := &Composer{lookup: lookup}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Build returns the track IDs matching f.
//
// The genre pool (genres ∪ group members) and the artist pool
// (artists ∪ similar artists) are each one dimension. Requested dimensions
// are intersected. With no dimension requested the result is empty.
// Unshuffled results are in ascending ID order.
func (c *Composer) Build(ctx context.Context, f Filters) ([]int64, error) {
	set, err := c.Resolve(ctx, f)
	if err != nil {
		return nil, err
	}

	ids := set.Sorted()
	if f.ShuffleEnabled() {
		c.shuffle(ids)
	}
	if f.Limit > 0 && len(ids) > f.Limit {
		ids = ids[:f.Limit]
	}
	return ids, nil
}

// Resolve returns the unordered set of tracks matching f.
func (c *Composer) Resolve(ctx context.Context, f Filters) (TrackSet, error) {
	if f.IsEmpty() {
		return TrackSet{}, nil
	}

	var title, genrePool, bpm, artistPool TrackSet

	g, gctx := errgroup.WithContext(ctx)

	if f.HasTitle() {
		g.Go(func() error {
			set, err := c.lookup.TracksByTitle(gctx, f.Title)
			if err != nil {
				return fmt.Errorf("resolve title: %w", err)
			}
			title = set
			return nil
		})
	}

	if f.HasGenrePool() {
		g.Go(func() error {
			set, err := c.genrePool(gctx, f)
			if err != nil {
				return err
			}
			genrePool = set
			return nil
		})
	}

	minBPM, maxBPM, hasBPM := f.BPMRange()
	if hasBPM {
		g.Go(func() error {
			set, err := c.lookup.TracksByBPM(gctx, minBPM, maxBPM)
			if err != nil {
				return fmt.Errorf("resolve bpm: %w", err)
			}
			bpm = set
			return nil
		})
	}

	if f.HasArtistPool() {
		g.Go(func() error {
			set, err := c.artistPool(gctx, f)
			if err != nil {
				return err
			}
			artistPool = set
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var acc TrackSet
	for _, dim := range []struct {
		requested bool
		set       TrackSet
	}{
		{f.HasTitle(), title},
		{f.HasGenrePool(), genrePool},
		{hasBPM, bpm},
		{f.HasArtistPool(), artistPool},
	} {
		if !dim.requested {
			continue
		}
		if acc == nil {
			// A nil set from the lookup is an empty match.
			acc = TrackSet{}.Union(dim.set)
			continue
		}
		acc = acc.Intersect(dim.set)
	}
	if acc == nil {
		acc = TrackSet{}
	}
	return acc, nil
}

func (c *Composer) genrePool(ctx context.Context, f Filters) (TrackSet, error) {
	pool := TrackSet{}

	if genres := nonBlank(f.Genres); len(genres) > 0 {
		set, err := c.lookup.TracksByGenres(ctx, genres)
		if err != nil {
			return nil, fmt.Errorf("resolve genres: %w", err)
		}
		pool = pool.Union(set)
	}

	groups := nonBlank(f.GenreGroups)
	if len(groups) == 0 {
		return pool, nil
	}

	seen := make(map[string]struct{})
	var members []string
	for _, group := range groups {
		expanded, err := c.lookup.ExpandGroup(ctx, group)
		if err != nil {
			return nil, fmt.Errorf("expand genre group %q: %w", group, err)
		}
		for _, genre := range expanded {
			if _, dup := seen[genre]; dup {
				continue
			}
			seen[genre] = struct{}{}
			members = append(members, genre)
		}
	}
	if len(members) == 0 {
		return pool, nil
	}

	set, err := c.lookup.TracksByExactGenres(ctx, members)
	if err != nil {
		return nil, fmt.Errorf("resolve genre groups: %w", err)
	}
	return pool.Union(set), nil
}

func (c *Composer) artistPool(ctx context.Context, f Filters) (TrackSet, error) {
	pool := TrackSet{}

	if artists := nonBlank(f.Artists); len(artists) > 0 {
		set, err := c.lookup.TracksByArtists(ctx, artists)
		if err != nil {
			return nil, fmt.Errorf("resolve artists: %w", err)
		}
		pool = pool.Union(set)
	}

	if seed := strings.TrimSpace(f.SimilarTo); seed != "" {
		set, err := c.lookup.TracksBySimilarArtists(ctx, seed)
		if err != nil {
			return nil, fmt.Errorf("resolve similar artists: %w", err)
		}
		pool = pool.Union(set)
	}

	return pool, nil
}

func (c *Composer) shuffle(ids []int64) {
	swap := func(i, j int) { ids[i], ids[j] = ids[j], ids[i] }

	if c.rand == nil {
		rand.Shuffle(len(ids), swap)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.rand.Shuffle(len(ids), swap)
}
