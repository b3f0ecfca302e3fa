package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/genre"
	"github.com/listenupapp/crate-server/internal/normalize"
	"github.com/listenupapp/crate-server/internal/store"
)

// ApplyNormalization stores a raw-to-canonical mapping and records run, all
// in one transaction. Missing canonical genres are created. Alias rows are
// inserted only for raw genres that have none, so reapplying a mapping is a
// no-op. run.AliasesCreated is set to the number of rows inserted.
func (s *Store) ApplyNormalization(ctx context.Context, mapping map[string]string, run *domain.NormalizationRun) error {
	raws := make([]string, 0, len(mapping))
	for raw := range mapping {
		raws = append(raws, raw)
	}
	slices.Sort(raws)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		created := 0
		for _, raw := range raws {
			ids, err := ensureGenres(ctx, tx, []string{raw, mapping[raw]})
			if err != nil {
				return err
			}
			rawID, canonicalID := ids[0], ids[0]
			if len(ids) > 1 {
				canonicalID = ids[1]
			}

			res, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO genre_aliases (raw_genre_id, canonical_genre_id, created_at)
				VALUES (?, ?, ?)`,
				rawID, canonicalID, now())
			if err != nil {
				return fmt.Errorf("insert alias %q: %w", raw, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			created += int(n)
		}

		run.AliasesCreated = created
		return insertRun(ctx, tx, run)
	})
}

// RecordNormalizationRun stores a run without touching aliases.
func (s *Store) RecordNormalizationRun(ctx context.Context, run *domain.NormalizationRun) error {
	return insertRun(ctx, s.db, run)
}

func insertRun(ctx context.Context, q querier, run *domain.NormalizationRun) error {
	clusters := run.Clusters
	if clusters == nil {
		clusters = []genre.Cluster{}
	}
	data, err := json.Marshal(clusters)
	if err != nil {
		return fmt.Errorf("marshal clusters: %w", err)
	}

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO normalization_runs (
			id, dry_run, total_genres, canonical_new, alias_mappings,
			identity_mappings, aliases_created, clusters_found, clusters, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		boolToInt(run.DryRun),
		run.TotalGenres,
		run.CanonicalNew,
		run.AliasMappings,
		run.IdentityMappings,
		run.AliasesCreated,
		run.ClustersFound,
		string(data),
		formatTime(run.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert normalization run: %w", err)
	}
	return nil
}

// ListNormalizationRuns returns the most recent runs, newest first.
func (s *Store) ListNormalizationRuns(ctx context.Context, limit int) ([]*domain.NormalizationRun, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dry_run, total_genres, canonical_new, alias_mappings,
			identity_mappings, aliases_created, clusters_found, clusters, created_at
		FROM normalization_runs
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query normalization runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.NormalizationRun
	for rows.Next() {
		var (
			run       domain.NormalizationRun
			dryRun    int
			clusters  string
			createdAt string
		)
		err := rows.Scan(
			&run.ID, &dryRun, &run.TotalGenres, &run.CanonicalNew, &run.AliasMappings,
			&run.IdentityMappings, &run.AliasesCreated, &run.ClustersFound, &clusters, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan normalization run: %w", err)
		}
		run.DryRun = dryRun != 0
		if err := json.Unmarshal([]byte(clusters), &run.Clusters); err != nil {
			return nil, fmt.Errorf("unmarshal clusters: %w", err)
		}
		if run.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// SetAlias points raw at canonical, replacing any existing alias for raw.
// Both genres are created if missing.
func (s *Store) SetAlias(ctx context.Context, raw, canonical string) (*domain.GenreAlias, error) {
	if normalize.Sanitize(raw) == "" || normalize.Sanitize(canonical) == "" {
		return nil, store.ErrInvalidInput.WithMessage("alias names are empty")
	}

	var alias *domain.GenreAlias
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ids, err := ensureGenres(ctx, tx, []string{raw, canonical})
		if err != nil {
			return err
		}
		rawID, canonicalID := ids[0], ids[0]
		if len(ids) > 1 {
			canonicalID = ids[1]
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO genre_aliases (raw_genre_id, canonical_genre_id, created_at)
			VALUES (?, ?, ?)
			ON CONFLICT(raw_genre_id) DO UPDATE SET canonical_genre_id = excluded.canonical_genre_id`,
			rawID, canonicalID, now())
		if err != nil {
			return fmt.Errorf("upsert alias: %w", err)
		}

		alias, err = getAlias(ctx, tx, rawID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return alias, nil
}

const aliasSelect = `
	SELECT ga.id, ga.raw_genre_id, ga.canonical_genre_id, r.name, c.name, ga.created_at
	FROM genre_aliases ga
	JOIN genres r ON r.id = ga.raw_genre_id
	JOIN genres c ON c.id = ga.canonical_genre_id`

func scanAlias(scanner interface{ Scan(dest ...any) error }) (*domain.GenreAlias, error) {
	var (
		a         domain.GenreAlias
		createdAt string
	)
	if err := scanner.Scan(&a.ID, &a.RawGenreID, &a.CanonicalGenreID, &a.RawName, &a.CanonicalName, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func getAlias(ctx context.Context, q querier, rawID int64) (*domain.GenreAlias, error) {
	a, err := scanAlias(q.QueryRowContext(ctx, aliasSelect+` WHERE ga.raw_genre_id = ?`, rawID))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// ListAliases returns every alias ordered by raw name.
// Identity aliases are included only when withIdentity is set.
func (s *Store) ListAliases(ctx context.Context, withIdentity bool) ([]*domain.GenreAlias, error) {
	query := aliasSelect
	if !withIdentity {
		query += ` WHERE ga.raw_genre_id <> ga.canonical_genre_id`
	}
	query += ` ORDER BY r.name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query aliases: %w", err)
	}
	defer rows.Close()

	var aliases []*domain.GenreAlias
	for rows.Next() {
		a, err := scanAlias(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		aliases = append(aliases, a)
	}
	return aliases, rows.Err()
}

// boolToInt converts a bool to 0/1 for storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
