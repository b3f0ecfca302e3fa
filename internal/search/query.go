package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// MinQueryLength is the shortest query accepted.
const MinQueryLength = 2

// DefaultLimit is the hit count when none is given.
const DefaultLimit = 15

// ErrQueryTooShort is returned for queries under MinQueryLength runes.
var ErrQueryTooShort = errors.New("search query too short")

// Params configures a track search.
type Params struct {
	Query string

	// Filters
	Genres []string // canonical genres, OR
	MinBPM int
	MaxBPM int

	Limit  int
	Offset int

	IncludeFacets bool
	Highlight     bool
}

// Result is a page of hits.
type Result struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []Hit        `json:"hits"`
	Genres []FacetCount `json:"genres,omitempty"`
}

// Hit is one matching track.
type Hit struct {
	TrackID    int64             `json:"track_id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Artist     string            `json:"artist,omitempty"`
	Album      string            `json:"album,omitempty"`
	BPM        int               `json:"bpm,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// FacetCount is a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search runs a query against the index.
func (s *TrackIndex) Search(ctx context.Context, params Params) (*Result, error) {
	params.Query = strings.TrimSpace(params.Query)
	if utf8.RuneCountInString(params.Query) < MinQueryLength {
		return nil, ErrQueryTooShort
	}
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(s.buildQuery(params), params.Limit, params.Offset, false)
	req.SortBy([]string{"-_score", "title"})
	req.Fields = []string{"title", "artist", "album", "bpm"}

	if params.IncludeFacets {
		req.AddFacet("genres", bleve.NewFacetRequest("genres", 20))
	}
	if params.Highlight {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("title")
		req.Highlight.AddField("artist")
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}

	for _, h := range res.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			s.logger.Warn("skipping search hit with bad id", "id", h.ID)
			continue
		}
		hit := Hit{TrackID: id, Score: h.Score}
		if v, ok := h.Fields["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := h.Fields["artist"].(string); ok {
			hit.Artist = v
		}
		if v, ok := h.Fields["album"].(string); ok {
			hit.Album = v
		}
		if v, ok := h.Fields["bpm"].(float64); ok {
			hit.BPM = int(v)
		}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, hit)
	}

	if facet, ok := res.Facets["genres"]; ok && facet.Terms != nil {
		for _, term := range facet.Terms.Terms() {
			result.Genres = append(result.Genres, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return result, nil
}

// buildQuery matches the text against title and artist (title boosted),
// album, and genres, with a fuzzy and prefix pass on title for typos and
// type-ahead. Filters are ANDed on.
func (s *TrackIndex) buildQuery(params Params) query.Query {
	text := make([]query.Query, 0, 6)

	titleMatch := bleve.NewMatchQuery(params.Query)
	titleMatch.SetField("title")
	titleMatch.SetBoost(3.0)
	text = append(text, titleMatch)

	artistMatch := bleve.NewMatchQuery(params.Query)
	artistMatch.SetField("artist")
	artistMatch.SetBoost(2.0)
	text = append(text, artistMatch)

	albumMatch := bleve.NewMatchQuery(params.Query)
	albumMatch.SetField("album")
	text = append(text, albumMatch)

	if canonical := s.normalizer.Normalize(params.Query); canonical != "" {
		genreTerm := bleve.NewTermQuery(canonical)
		genreTerm.SetField("genres")
		genreTerm.SetBoost(1.5)
		text = append(text, genreTerm)
	}

	fuzzy := bleve.NewFuzzyQuery(strings.ToLower(params.Query))
	fuzzy.SetFuzziness(1)
	fuzzy.SetField("title")
	fuzzy.SetBoost(0.8)
	text = append(text, fuzzy)

	prefix := bleve.NewPrefixQuery(strings.ToLower(params.Query))
	prefix.SetField("title")
	prefix.SetBoost(0.5)
	text = append(text, prefix)

	queries := []query.Query{bleve.NewDisjunctionQuery(text...)}

	if len(params.Genres) > 0 {
		genreQueries := make([]query.Query, 0, len(params.Genres))
		for _, g := range params.Genres {
			canonical := s.normalizer.Normalize(g)
			if canonical == "" {
				continue
			}
			tq := bleve.NewTermQuery(canonical)
			tq.SetField("genres")
			genreQueries = append(genreQueries, tq)
		}
		if len(genreQueries) > 0 {
			queries = append(queries, bleve.NewDisjunctionQuery(genreQueries...))
		}
	}

	if params.MinBPM > 0 || params.MaxBPM > 0 {
		lo := float64(params.MinBPM)
		hi := float64(params.MaxBPM)
		if params.MaxBPM <= 0 {
			hi = 1000
		}
		inclusive := true
		rq := bleve.NewNumericRangeInclusiveQuery(&lo, &hi, &inclusive, &inclusive)
		rq.SetField("bpm")
		queries = append(queries, rq)
	}

	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}
