package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/service"
)

func (s *Server) registerGroupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGenreGroups",
		Method:      http.MethodGet,
		Path:        "/api/v1/genre-groups",
		Summary:     "List genre groups",
		Description: "Returns curated genre groups with member counts, in display order",
		Tags:        []string{"Genre Groups"},
	}, s.handleListGroups)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGenreGroup",
		Method:      http.MethodGet,
		Path:        "/api/v1/genre-groups/{name}",
		Summary:     "Get genre group",
		Description: "Returns a genre group with its member genres",
		Tags:        []string{"Genre Groups"},
	}, s.handleGetGroup)

	huma.Register(s.api, huma.Operation{
		OperationID: "seedGenreGroups",
		Method:      http.MethodPost,
		Path:        "/api/v1/genre-groups/seed",
		Summary:     "Seed genre groups",
		Description: "Upserts the built-in groups, or the groups from the configured TOML file",
		Tags:        []string{"Genre Groups"},
	}, s.handleSeedGroups)
}

// ListGroupsOutput contains genre groups.
type ListGroupsOutput struct {
	Body struct {
		Groups []*domain.GenreGroup `json:"groups" doc:"Genre groups"`
	}
}

// GetGroupInput identifies a group.
type GetGroupInput struct {
	Name string `path:"name" maxLength:"100" doc:"Group name, e.g. hip-hop-rnb"`
}

// GetGroupOutput contains one group.
type GetGroupOutput struct {
	Body *domain.GenreGroup
}

// SeedGroupsInput controls seeding.
type SeedGroupsInput struct {
	DryRun        bool `query:"dry_run" doc:"Report without writing"`
	CreateMissing bool `query:"create_missing" doc:"Create member genres that do not exist yet"`
}

// SeedGroupsOutput contains the seeding report.
type SeedGroupsOutput struct {
	Body *domain.GroupSeedReport
}

func (s *Server) handleListGroups(ctx context.Context, _ *struct{}) (*ListGroupsOutput, error) {
	groups, err := s.services.Group.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &ListGroupsOutput{}
	out.Body.Groups = nonNil(groups)
	return out, nil
}

func (s *Server) handleGetGroup(ctx context.Context, input *GetGroupInput) (*GetGroupOutput, error) {
	group, err := s.services.Group.Get(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	return &GetGroupOutput{Body: group}, nil
}

// The groups file path is not accepted over HTTP; only the configured
// file or the built-ins are used.
func (s *Server) handleSeedGroups(ctx context.Context, input *SeedGroupsInput) (*SeedGroupsOutput, error) {
	report, err := s.services.Group.Seed(ctx, service.SeedRequest{
		DryRun:        input.DryRun,
		CreateMissing: input.CreateMissing,
	})
	if err != nil {
		return nil, err
	}
	return &SeedGroupsOutput{Body: report}, nil
}
