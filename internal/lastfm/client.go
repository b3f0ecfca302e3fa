// Package lastfm fetches similar artists and artist top tags from Last.fm.
// Calls are rate limited and responses are cached with a TTL.
package lastfm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shkh/lastfm-go/lastfm"

	"github.com/listenupapp/crate-server/internal/cache"
	"github.com/listenupapp/crate-server/internal/ratelimit"
)

// ErrNoAPIKey is returned when the client was built without credentials.
var ErrNoAPIKey = errors.New("last.fm api key not configured")

const limiterKey = "lastfm"

// SimilarArtist is one entry of an artist.getSimilar response.
type SimilarArtist struct {
	Name  string  `json:"name"`
	Match float64 `json:"match"`
}

// Tag is one entry of an artist.getTopTags response, in rank order.
type Tag struct {
	Name string `json:"name"`
}

// Config holds client settings.
type Config struct {
	APIKey    string
	APISecret string
	// RequestsPerSecond caps outbound calls. Last.fm asks for at most 5.
	RequestsPerSecond float64
	CacheTTL          time.Duration
}

// Client talks to Last.fm.
type Client struct {
	limiter *ratelimit.KeyedRateLimiter
	cache   *cache.Cache
	ttl     time.Duration
	logger  *slog.Logger
	enabled bool

	// Swapped in tests.
	fetchSimilar func(artist string, limit int) ([]SimilarArtist, error)
	fetchTopTags func(artist string) ([]Tag, error)
}

// New builds a client. c may be nil, which disables caching.
func New(cfg Config, c *cache.Cache, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	api := lastfm.New(cfg.APIKey, cfg.APISecret)
	client := &Client{
		limiter: ratelimit.New(rps, 1),
		cache:   c,
		ttl:     cfg.CacheTTL,
		logger:  logger,
		enabled: cfg.APIKey != "",
	}

	client.fetchSimilar = func(artist string, limit int) ([]SimilarArtist, error) {
		result, err := api.Artist.GetSimilar(lastfm.P{
			"artist": artist,
			"limit":  limit,
		})
		if err != nil {
			return nil, err
		}
		out := make([]SimilarArtist, 0, len(result.Similars))
		for _, a := range result.Similars {
			out = append(out, SimilarArtist{Name: a.Name, Match: parseMatch(a.Match)})
		}
		return out, nil
	}

	client.fetchTopTags = func(artist string) ([]Tag, error) {
		result, err := api.Artist.GetTopTags(lastfm.P{
			"artist": artist,
		})
		if err != nil {
			return nil, err
		}
		out := make([]Tag, 0, len(result.Tags))
		for _, t := range result.Tags {
			out = append(out, Tag{Name: t.Name})
		}
		return out, nil
	}

	return client
}

// Enabled reports whether an API key was configured.
func (c *Client) Enabled() bool {
	return c.enabled
}

// Close stops the limiter's background sweep.
func (c *Client) Close() {
	c.limiter.Stop()
}

// SimilarArtists returns up to limit artists similar to artist.
func (c *Client) SimilarArtists(ctx context.Context, artist string, limit int) ([]SimilarArtist, error) {
	if !c.enabled {
		return nil, ErrNoAPIKey
	}
	key := cache.Key("lastfm", "similar", artist, strconv.Itoa(limit))

	var cached []SimilarArtist
	if c.lookup(key, &cached) {
		return cached, nil
	}

	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return nil, fmt.Errorf("wait for last.fm: %w", err)
	}
	similar, err := c.fetchSimilar(artist, limit)
	if err != nil {
		return nil, fmt.Errorf("get similar artists for %q: %w", artist, err)
	}

	c.store(key, similar)
	return similar, nil
}

// TopTags returns the artist's top tags in rank order.
func (c *Client) TopTags(ctx context.Context, artist string) ([]Tag, error) {
	if !c.enabled {
		return nil, ErrNoAPIKey
	}
	key := cache.Key("lastfm", "tags", artist)

	var cached []Tag
	if c.lookup(key, &cached) {
		return cached, nil
	}

	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return nil, fmt.Errorf("wait for last.fm: %w", err)
	}
	tags, err := c.fetchTopTags(artist)
	if err != nil {
		return nil, fmt.Errorf("get top tags for %q: %w", artist, err)
	}

	c.store(key, tags)
	return tags, nil
}

func (c *Client) lookup(key string, dest any) bool {
	if c.cache == nil {
		return false
	}
	found, err := c.cache.GetJSON(key, dest)
	if err != nil {
		c.logger.Warn("last.fm cache read failed", "key", key, "error", err)
		return false
	}
	return found
}

func (c *Client) store(key string, v any) {
	if c.cache == nil {
		return
	}
	if err := c.cache.SetJSON(key, v, c.ttl); err != nil {
		c.logger.Warn("last.fm cache write failed", "key", key, "error", err)
	}
}

// ArtistURL returns the public Last.fm page for an artist.
func ArtistURL(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return "https://www.last.fm/music/" + url.PathEscape(strings.ReplaceAll(name, " ", "+"))
}

func parseMatch(s string) float64 {
	var score float64
	if s != "" {
		_, _ = fmt.Sscanf(s, "%f", &score) //nolint:errcheck // parse failure means score stays 0
	}
	return score
}
