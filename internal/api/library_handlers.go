package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/crate-server/internal/enrich"
	"github.com/listenupapp/crate-server/internal/library"
	"github.com/listenupapp/crate-server/internal/service"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "importLibrary",
		Method:      http.MethodPost,
		Path:        "/api/v1/library/import",
		Summary:     "Import library",
		Description: "Walks the configured music directory and upserts every music file",
		Tags:        []string{"Library"},
	}, s.handleImportLibrary)
}

func (s *Server) registerEnrichRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "enrichArtists",
		Method:      http.MethodPost,
		Path:        "/api/v1/artists/enrich",
		Summary:     "Enrich artists",
		Description: "Fetches similar artists and top tags from Last.fm for stale artists",
		Tags:        []string{"Artists"},
	}, s.handleEnrichArtists)
}

// ImportLibraryOutput contains the import report.
type ImportLibraryOutput struct {
	Body *library.Report
}

// EnrichArtistsInput selects how many artists to enrich.
type EnrichArtistsInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"10000" doc:"Artists to enrich, 0 for all stale artists"`
}

// EnrichArtistsOutput contains the enrichment report.
type EnrichArtistsOutput struct {
	Body *enrich.Report
}

// Only the configured directory is imported over HTTP.
func (s *Server) handleImportLibrary(ctx context.Context, _ *struct{}) (*ImportLibraryOutput, error) {
	report, err := s.services.Library.Import(ctx, "")
	if err != nil {
		return nil, err
	}
	return &ImportLibraryOutput{Body: report}, nil
}

func (s *Server) handleEnrichArtists(ctx context.Context, input *EnrichArtistsInput) (*EnrichArtistsOutput, error) {
	report, err := s.services.Enrich.Run(ctx, service.EnrichRequest{Limit: input.Limit})
	if err != nil {
		return nil, err
	}
	return &EnrichArtistsOutput{Body: report}, nil
}
