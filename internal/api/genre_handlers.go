package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/genre"
	"github.com/listenupapp/crate-server/internal/service"
)

func (s *Server) registerGenreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List canonical genres",
		Description: "Returns the canonical genres in use with track counts. Before the first normalization run every stored genre is listed.",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "previewNormalization",
		Method:      http.MethodPost,
		Path:        "/api/v1/genres/normalize-preview",
		Summary:     "Preview normalization",
		Description: "Normalizes a list of raw genre strings without touching storage",
		Tags:        []string{"Genres"},
	}, s.handleNormalizePreview)

	huma.Register(s.api, huma.Operation{
		OperationID: "getNormalizationRules",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres/rules",
		Summary:     "Get normalization rules",
		Description: "Returns the curated alias table and hyphen prefixes the normalizer applies",
		Tags:        []string{"Genres"},
	}, s.handleGetRules)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGenreClusters",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres/clusters",
		Summary:     "List duplicate clusters",
		Description: "Groups stored genre spellings that normalize to the same canonical genre",
		Tags:        []string{"Genres"},
	}, s.handleListClusters)

	huma.Register(s.api, huma.Operation{
		OperationID: "normalizeGenres",
		Method:      http.MethodPost,
		Path:        "/api/v1/genres/normalize",
		Summary:     "Run normalization",
		Description: "Maps every stored genre to its canonical form and records the run",
		Tags:        []string{"Genres"},
	}, s.handleNormalize)

	huma.Register(s.api, huma.Operation{
		OperationID: "listNormalizationRuns",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres/runs",
		Summary:     "List normalization runs",
		Description: "Returns recent normalization runs, newest first",
		Tags:        []string{"Genres"},
	}, s.handleListRuns)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGenreAliases",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres/aliases",
		Summary:     "List aliases",
		Description: "Returns raw-to-canonical genre aliases",
		Tags:        []string{"Genres"},
	}, s.handleListAliases)

	huma.Register(s.api, huma.Operation{
		OperationID: "setGenreAlias",
		Method:      http.MethodPut,
		Path:        "/api/v1/genres/aliases",
		Summary:     "Set alias",
		Description: "Points a raw genre at a canonical genre, replacing any existing alias",
		Tags:        []string{"Genres"},
	}, s.handleSetAlias)
}

// === DTOs ===

// ListGenresOutput contains canonical genres.
type ListGenresOutput struct {
	Body struct {
		Genres []*domain.Genre `json:"genres" doc:"Canonical genres, most used first"`
	}
}

// NormalizePreviewInput contains raw genres to preview.
type NormalizePreviewInput struct {
	Body service.PreviewRequest
}

// NormalizePreviewOutput contains one result per input, in input order.
type NormalizePreviewOutput struct {
	Body struct {
		Results []genre.Result `json:"results" doc:"Normalization results"`
	}
}

// GetRulesOutput contains the normalizer tables.
type GetRulesOutput struct {
	Body *service.Rules
}

// ListClustersOutput contains duplicate clusters.
type ListClustersOutput struct {
	Body struct {
		Clusters []genre.Cluster `json:"clusters" doc:"Clusters with two or more spellings"`
	}
}

// NormalizeInput selects a dry run.
type NormalizeInput struct {
	DryRun bool `query:"dry_run" doc:"Compute statistics without writing aliases"`
}

// NormalizeOutput contains the recorded run.
type NormalizeOutput struct {
	Body *domain.NormalizationRun
}

// ListRunsInput pages normalization runs.
type ListRunsInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"100" doc:"Maximum runs (default 20)"`
}

// ListRunsOutput contains normalization runs.
type ListRunsOutput struct {
	Body struct {
		Runs []*domain.NormalizationRun `json:"runs" doc:"Runs, newest first"`
	}
}

// ListAliasesInput filters aliases.
type ListAliasesInput struct {
	Identity bool `query:"identity" doc:"Include genres that map to themselves"`
}

// ListAliasesOutput contains aliases.
type ListAliasesOutput struct {
	Body struct {
		Aliases []*domain.GenreAlias `json:"aliases" doc:"Aliases ordered by raw name"`
	}
}

// SetAliasInput contains the alias to set.
type SetAliasInput struct {
	Body service.AliasRequest
}

// SetAliasOutput contains the stored alias.
type SetAliasOutput struct {
	Body *domain.GenreAlias
}

// === Handlers ===

func (s *Server) handleListGenres(ctx context.Context, _ *struct{}) (*ListGenresOutput, error) {
	genres, err := s.services.Genre.ListCanonical(ctx)
	if err != nil {
		return nil, err
	}
	out := &ListGenresOutput{}
	out.Body.Genres = nonNil(genres)
	return out, nil
}

func (s *Server) handleNormalizePreview(_ context.Context, input *NormalizePreviewInput) (*NormalizePreviewOutput, error) {
	results, err := s.services.Genre.Preview(input.Body)
	if err != nil {
		return nil, err
	}
	out := &NormalizePreviewOutput{}
	out.Body.Results = results
	return out, nil
}

func (s *Server) handleGetRules(_ context.Context, _ *struct{}) (*GetRulesOutput, error) {
	return &GetRulesOutput{Body: s.services.Genre.Rules()}, nil
}

func (s *Server) handleListClusters(ctx context.Context, _ *struct{}) (*ListClustersOutput, error) {
	clusters, err := s.services.Genre.Clusters(ctx)
	if err != nil {
		return nil, err
	}
	out := &ListClustersOutput{}
	out.Body.Clusters = nonNil(clusters)
	return out, nil
}

func (s *Server) handleNormalize(ctx context.Context, input *NormalizeInput) (*NormalizeOutput, error) {
	run, err := s.services.Genre.Normalize(ctx, input.DryRun)
	if err != nil {
		return nil, err
	}
	return &NormalizeOutput{Body: run}, nil
}

func (s *Server) handleListRuns(ctx context.Context, input *ListRunsInput) (*ListRunsOutput, error) {
	runs, err := s.services.Genre.ListRuns(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	out := &ListRunsOutput{}
	out.Body.Runs = nonNil(runs)
	return out, nil
}

func (s *Server) handleListAliases(ctx context.Context, input *ListAliasesInput) (*ListAliasesOutput, error) {
	aliases, err := s.services.Genre.ListAliases(ctx, input.Identity)
	if err != nil {
		return nil, err
	}
	out := &ListAliasesOutput{}
	out.Body.Aliases = nonNil(aliases)
	return out, nil
}

func (s *Server) handleSetAlias(ctx context.Context, input *SetAliasInput) (*SetAliasOutput, error) {
	alias, err := s.services.Genre.SetAlias(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &SetAliasOutput{Body: alias}, nil
}
