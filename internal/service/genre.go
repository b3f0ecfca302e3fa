package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/listenupapp/crate-server/internal/domain"
	domainerrors "github.com/listenupapp/crate-server/internal/errors"
	"github.com/listenupapp/crate-server/internal/genre"
	"github.com/listenupapp/crate-server/internal/id"
	"github.com/listenupapp/crate-server/internal/store"
	"github.com/listenupapp/crate-server/internal/store/sqlite"
	"github.com/listenupapp/crate-server/internal/validation"
)

// MaxPreviewInputs caps a normalize-preview request.
const MaxPreviewInputs = 500

// GenreService orchestrates genre normalization.
type GenreService struct {
	store      *sqlite.Store
	normalizer *genre.Normalizer
	logger     *slog.Logger
	validator  *validation.Validator
}

// NewGenreService creates a new genre service. A nil normalizer uses the
// built-in tables.
func NewGenreService(st *sqlite.Store, normalizer *genre.Normalizer, logger *slog.Logger) *GenreService {
	if normalizer == nil {
		normalizer = genre.Default()
	}
	return &GenreService{
		store:      st,
		normalizer: normalizer,
		logger:     logger,
		validator:  validation.New(),
	}
}

// AliasRule is one curated variant and the canonical genre it maps to.
type AliasRule struct {
	Variant   string `json:"variant"`
	Canonical string `json:"canonical"`
}

// Rules describes the tables the normalizer runs with.
type Rules struct {
	Aliases  []AliasRule `json:"aliases" doc:"Curated variants, ordered by variant"`
	Prefixes []string    `json:"prefixes" doc:"Words that hyphenate with the following word"`
}

// Rules returns the normalizer's alias table and hyphen prefixes.
func (s *GenreService) Rules() *Rules {
	entries := s.normalizer.Aliases().Entries()
	aliases := make([]AliasRule, 0, len(entries))
	for _, variant := range slices.Sorted(maps.Keys(entries)) {
		aliases = append(aliases, AliasRule{Variant: variant, Canonical: entries[variant]})
	}
	return &Rules{Aliases: aliases, Prefixes: s.normalizer.Prefixes().Words()}
}

// PreviewRequest lists raw tags to normalize without touching storage.
type PreviewRequest struct {
	Genres []string `json:"genres" validate:"required,min=1,max=500" doc:"Raw genre tags"`
}

// Preview explains how each raw tag normalizes. Blank tags are reported
// with an empty canonical form.
func (s *GenreService) Preview(req PreviewRequest) ([]genre.Result, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	out := make([]genre.Result, 0, len(req.Genres))
	for _, raw := range req.Genres {
		out = append(out, s.normalizer.Explain(raw))
	}
	return out, nil
}

// ListCanonical returns the canonical genres in use with track counts.
// Before the first normalization run this is every stored genre.
func (s *GenreService) ListCanonical(ctx context.Context) ([]*domain.Genre, error) {
	return s.store.ListCanonicalGenres(ctx)
}

// Clusters groups the stored genre names by canonical form, keeping groups
// with two or more spellings.
func (s *GenreService) Clusters(ctx context.Context) ([]genre.Cluster, error) {
	names, err := s.store.ListGenreNames(ctx)
	if err != nil {
		return nil, err
	}
	return s.normalizer.FindDuplicateClusters(names), nil
}

// Normalize maps every stored genre to its canonical form. With dryRun
// only the statistics are computed; the run is still recorded so the
// review history survives. Re-running is a no-op for existing aliases.
func (s *GenreService) Normalize(ctx context.Context, dryRun bool) (*domain.NormalizationRun, error) {
	start := time.Now()

	names, err := s.store.ListGenreNames(ctx)
	if err != nil {
		return nil, err
	}

	mapping := s.normalizer.BuildNormalizationMap(names)
	clusters := s.normalizer.FindDuplicateClusters(names)

	existing := make(map[string]struct{}, len(names))
	for _, n := range names {
		existing[n] = struct{}{}
	}

	runID, err := id.NewRunID()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}

	run := &domain.NormalizationRun{
		ID:            runID,
		DryRun:        dryRun,
		TotalGenres:   len(names),
		ClustersFound: len(clusters),
		Clusters:      clusters,
		CreatedAt:     time.Now(),
	}

	newCanonical := make(map[string]struct{})
	for raw, canonical := range mapping {
		if raw == canonical {
			run.IdentityMappings++
		} else {
			run.AliasMappings++
		}
		if _, ok := existing[canonical]; !ok {
			newCanonical[canonical] = struct{}{}
		}
	}
	run.CanonicalNew = len(newCanonical)

	if dryRun {
		err = s.store.RecordNormalizationRun(ctx, run)
	} else {
		err = s.store.ApplyNormalization(ctx, mapping, run)
	}
	if err != nil {
		return nil, fmt.Errorf("store normalization run: %w", err)
	}

	s.logger.Info("genre normalization finished",
		"run_id", run.ID,
		"dry_run", dryRun,
		"total_genres", run.TotalGenres,
		"aliases", run.AliasMappings,
		"aliases_created", run.AliasesCreated,
		"clusters", run.ClustersFound,
		"duration", time.Since(start),
	)
	return run, nil
}

// ListRuns returns the most recent normalization runs.
func (s *GenreService) ListRuns(ctx context.Context, limit int) ([]*domain.NormalizationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.store.ListNormalizationRuns(ctx, limit)
}

// AliasRequest pins a raw genre to a canonical genre by hand.
type AliasRequest struct {
	Raw       string `json:"raw" validate:"required,max=200" doc:"Raw genre as stored"`
	Canonical string `json:"canonical" validate:"required,max=200,genre" doc:"Canonical genre"`
}

// SetAlias stores a manual alias. The canonical side is normalized first,
// so "Hip Hop" and "hip-hop" land on the same row.
func (s *GenreService) SetAlias(ctx context.Context, req AliasRequest) (*domain.GenreAlias, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	alias, err := s.store.SetAlias(ctx, req.Raw, s.normalizer.Normalize(req.Canonical))
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domainerrors.NotFoundf("genre %q not found", req.Raw)
		}
		return nil, err
	}

	s.logger.Info("genre alias set", "raw", alias.RawName, "canonical", alias.CanonicalName)
	return alias, nil
}

// ListAliases returns the stored aliases, optionally including identities.
func (s *GenreService) ListAliases(ctx context.Context, withIdentity bool) ([]*domain.GenreAlias, error) {
	return s.store.ListAliases(ctx, withIdentity)
}
