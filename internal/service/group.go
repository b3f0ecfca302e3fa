package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/listenupapp/crate-server/internal/domain"
	domainerrors "github.com/listenupapp/crate-server/internal/errors"
	"github.com/listenupapp/crate-server/internal/genre"
	"github.com/listenupapp/crate-server/internal/store"
	"github.com/listenupapp/crate-server/internal/store/sqlite"
	"github.com/listenupapp/crate-server/internal/validation"
)

// GroupService manages curated genre groups.
type GroupService struct {
	store      *sqlite.Store
	normalizer *genre.Normalizer
	groupsFile string
	logger     *slog.Logger
	validator  *validation.Validator
}

// NewGroupService creates a group service. groupsFile is the configured
// seed file; empty means the built-in groups.
func NewGroupService(st *sqlite.Store, normalizer *genre.Normalizer, groupsFile string, logger *slog.Logger) *GroupService {
	if normalizer == nil {
		normalizer = genre.Default()
	}
	return &GroupService{
		store:      st,
		normalizer: normalizer,
		groupsFile: groupsFile,
		logger:     logger,
		validator:  validation.New(),
	}
}

// GroupsFile returns the configured seed file.
func (s *GroupService) GroupsFile() string {
	return s.groupsFile
}

// SeedRequest controls a seeding pass.
type SeedRequest struct {
	File          string `json:"file,omitempty" validate:"omitempty,max=4096" doc:"TOML groups file; defaults to the configured file or the built-in groups"`
	DryRun        bool   `json:"dry_run,omitempty" doc:"Report without writing"`
	CreateMissing bool   `json:"create_missing,omitempty" doc:"Create member genres that do not exist yet"`
}

// Seed upserts the groups from the request file, the configured file, or
// the built-in set, in that order of preference.
func (s *GroupService) Seed(ctx context.Context, req SeedRequest) (*domain.GroupSeedReport, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	path := req.File
	if path == "" {
		path = s.groupsFile
	}

	seeds := genre.DefaultGroups
	source := "built-in"
	if path != "" {
		loaded, err := LoadGroupSeeds(path, s.normalizer)
		if err != nil {
			return nil, err
		}
		seeds = loaded
		source = path
	}

	report, err := s.store.SeedGroups(ctx, seeds, sqlite.SeedOptions{
		DryRun:        req.DryRun,
		CreateMissing: req.CreateMissing,
	})
	if err != nil {
		return nil, fmt.Errorf("seed groups: %w", err)
	}

	s.logger.Info("genre groups seeded",
		"source", source,
		"dry_run", req.DryRun,
		"created", report.GroupsCreated,
		"updated", report.GroupsUpdated,
		"members_linked", report.MembersLinked,
		"not_found", len(report.GenresNotFound),
	)
	return report, nil
}

// List returns every group ordered for display.
func (s *GroupService) List(ctx context.Context) ([]*domain.GenreGroup, error) {
	return s.store.ListGroups(ctx)
}

// Get returns one group with its members.
func (s *GroupService) Get(ctx context.Context, name string) (*domain.GenreGroup, error) {
	g, err := s.store.GetGroup(ctx, name)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domainerrors.NotFoundf("genre group %q not found", name)
		}
		return nil, err
	}
	return g, nil
}

// LoadGroupSeeds reads a TOML groups file:
//
//	[[groups]]
//	name = "chill"
//	display_name = "Chill"
//	genres = ["ambient", "downtempo"]
//
// A missing name is derived from the display name. Members are normalized
// so the file may use any spelling.
func LoadGroupSeeds(path string, normalizer *genre.Normalizer) ([]genre.GroupSeed, error) {
	if normalizer == nil {
		normalizer = genre.Default()
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, domainerrors.Validationf("read groups file %s: %v", path, err)
	}

	var seeds []genre.GroupSeed
	if err := k.Unmarshal("groups", &seeds); err != nil {
		return nil, domainerrors.Validationf("parse groups file %s: %v", path, err)
	}
	if len(seeds) == 0 {
		return nil, domainerrors.Validationf("groups file %s defines no groups", path)
	}

	seen := make(map[string]struct{}, len(seeds))
	for i := range seeds {
		seed := &seeds[i]
		seed.DisplayName = strings.TrimSpace(seed.DisplayName)
		seed.Name = strings.TrimSpace(seed.Name)
		if seed.Name == "" {
			seed.Name = genre.Slugify(seed.DisplayName)
		}
		if seed.Name == "" {
			return nil, domainerrors.Validationf("groups file %s: group %d has no name", path, i+1)
		}
		if seed.DisplayName == "" {
			seed.DisplayName = seed.Name
		}
		if _, dup := seen[seed.Name]; dup {
			return nil, domainerrors.Validationf("groups file %s: duplicate group %q", path, seed.Name)
		}
		seen[seed.Name] = struct{}{}

		members := make([]string, 0, len(seed.Genres))
		for _, g := range seed.Genres {
			if n := normalizer.Normalize(g); n != "" {
				members = append(members, n)
			}
		}
		seed.Genres = members
	}
	return seeds, nil
}
