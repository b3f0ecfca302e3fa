package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/crate-server/internal/search"
	"github.com/listenupapp/crate-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchTracks",
		Method:      http.MethodGet,
		Path:        "/api/v1/tracks/search",
		Summary:     "Search tracks",
		Description: "Full-text search over track titles, artists, albums and genres",
		Tags:        []string{"Search"},
	}, s.handleSearchTracks)

	huma.Register(s.api, huma.Operation{
		OperationID: "reindexTracks",
		Method:      http.MethodPost,
		Path:        "/api/v1/tracks/reindex",
		Summary:     "Rebuild search index",
		Description: "Drops and rebuilds the search index from the track store",
		Tags:        []string{"Search"},
	}, s.handleReindex)
}

// SearchTracksInput contains search parameters.
type SearchTracksInput struct {
	Query  string `query:"q" maxLength:"200" doc:"Search query, at least 2 characters"`
	Genres string `query:"genres" maxLength:"500" doc:"Comma-separated genres to filter by, any spelling"`
	MinBPM int    `query:"min_bpm" minimum:"0" maximum:"400" doc:"Inclusive lower BPM bound"`
	MaxBPM int    `query:"max_bpm" minimum:"0" maximum:"400" doc:"Inclusive upper BPM bound"`
	Limit  int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum hits (default 15)"`
	Offset int    `query:"offset" minimum:"0" doc:"Pagination offset"`
	Facets bool   `query:"facets" doc:"Include genre facets"`
}

// SearchTracksOutput contains search results.
type SearchTracksOutput struct {
	Body *search.Result
}

// ReindexOutput reports the rebuilt index size.
type ReindexOutput struct {
	Body struct {
		Indexed int `json:"indexed" doc:"Tracks indexed"`
	}
}

func (s *Server) handleSearchTracks(ctx context.Context, input *SearchTracksInput) (*SearchTracksOutput, error) {
	result, err := s.services.Search.Search(ctx, service.SearchParams{
		Query:         input.Query,
		Genres:        splitList(input.Genres),
		MinBPM:        input.MinBPM,
		MaxBPM:        input.MaxBPM,
		Limit:         input.Limit,
		Offset:        input.Offset,
		IncludeFacets: input.Facets,
	})
	if err != nil {
		return nil, err
	}
	return &SearchTracksOutput{Body: result}, nil
}

func (s *Server) handleReindex(ctx context.Context, _ *struct{}) (*ReindexOutput, error) {
	n, err := s.services.Search.Reindex(ctx)
	if err != nil {
		return nil, err
	}
	out := &ReindexOutput{}
	out.Body.Indexed = n
	return out, nil
}
