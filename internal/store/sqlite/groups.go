package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/genre"
)

// SeedOptions controls SeedGroups.
type SeedOptions struct {
	DryRun        bool // Report only; nothing is written
	CreateMissing bool // Insert member genres that do not exist yet
}

// SeedGroups upserts each group, refreshing its display fields, and links
// its members to existing genres by case-insensitive name. Links are only
// added, never removed. With DryRun the work runs in a transaction that is
// rolled back, so the report is accurate but nothing persists.
func (s *Store) SeedGroups(ctx context.Context, seeds []genre.GroupSeed, opts SeedOptions) (*domain.GroupSeedReport, error) {
	report := &domain.GroupSeedReport{DryRun: opts.DryRun, GenresNotFound: []domain.GroupMemberMiss{}}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, seed := range seeds {
		groupID, created, err := upsertGroup(ctx, tx, seed)
		if err != nil {
			return nil, err
		}
		if created {
			report.GroupsCreated++
		} else {
			report.GroupsUpdated++
		}

		for _, member := range seed.Genres {
			member = strings.TrimSpace(member)
			if member == "" {
				continue
			}

			genreIDs, err := genreIDsByName(ctx, tx, member)
			if err != nil {
				return nil, err
			}
			if len(genreIDs) == 0 {
				if !opts.CreateMissing {
					report.GenresNotFound = append(report.GenresNotFound, domain.GroupMemberMiss{Group: seed.Name, Genre: member})
					continue
				}
				genreIDs, err = ensureGenres(ctx, tx, []string{member})
				if err != nil {
					return nil, err
				}
				report.GenresCreated++
			}

			for _, genreID := range genreIDs {
				res, err := tx.ExecContext(ctx,
					`INSERT OR IGNORE INTO genre_group_members (group_id, genre_id) VALUES (?, ?)`,
					groupID, genreID)
				if err != nil {
					return nil, fmt.Errorf("link %s to %s: %w", member, seed.Name, err)
				}
				n, err := res.RowsAffected()
				if err != nil {
					return nil, err
				}
				report.MembersLinked += int(n)
			}
		}
	}

	if opts.DryRun {
		return report, nil
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return report, nil
}

func upsertGroup(ctx context.Context, tx *sql.Tx, seed genre.GroupSeed) (int64, bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM genre_groups WHERE name = ?`, seed.Name).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		err = tx.QueryRowContext(ctx, `
			INSERT INTO genre_groups (name, display_name, description, sort_order)
			VALUES (?, ?, ?, ?)
			RETURNING id`,
			seed.Name, seed.DisplayName, nullString(seed.Description), seed.SortOrder,
		).Scan(&id)
		if err != nil {
			return 0, false, fmt.Errorf("insert group %s: %w", seed.Name, err)
		}
		return id, true, nil
	case err != nil:
		return 0, false, fmt.Errorf("get group %s: %w", seed.Name, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE genre_groups SET display_name = ?, description = ?, sort_order = ?
		WHERE id = ?`,
		seed.DisplayName, nullString(seed.Description), seed.SortOrder, id)
	if err != nil {
		return 0, false, fmt.Errorf("update group %s: %w", seed.Name, err)
	}
	return id, false, nil
}

func genreIDsByName(ctx context.Context, q querier, name string) ([]int64, error) {
	rows, err := q.QueryContext(ctx, `SELECT id FROM genres WHERE LOWER(name) = LOWER(?) ORDER BY id`, name)
	if err != nil {
		return nil, fmt.Errorf("find genre %q: %w", name, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// groupColumns must match the scan order in scanGroup.
const groupColumns = `gg.id, gg.name, gg.display_name, gg.description, gg.sort_order,
	(SELECT COUNT(*) FROM genre_group_members m WHERE m.group_id = gg.id)`

func scanGroup(scanner interface{ Scan(dest ...any) error }) (*domain.GenreGroup, error) {
	var (
		g           domain.GenreGroup
		description sql.NullString
	)
	if err := scanner.Scan(&g.ID, &g.Name, &g.DisplayName, &description, &g.SortOrder, &g.MemberCount); err != nil {
		return nil, err
	}
	g.Description = description.String
	return &g, nil
}

// ListGroups returns every group with its member count.
func (s *Store) ListGroups(ctx context.Context) ([]*domain.GenreGroup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+groupColumns+` FROM genre_groups gg ORDER BY gg.sort_order, gg.display_name`)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var groups []*domain.GenreGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// GetGroup retrieves a group by case-insensitive name, with its members.
// Returns store.ErrNotFound if no group matches.
func (s *Store) GetGroup(ctx context.Context, name string) (*domain.GenreGroup, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM genre_groups gg WHERE LOWER(gg.name) = LOWER(?)`, name)
	g, err := scanGroup(row)
	if err != nil {
		return nil, notFound(err)
	}

	g.Members, err = groupMembers(ctx, s.db, g.ID)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ExpandGroup returns the member genre names of a group, matched
// case-insensitively. An unknown group has no members.
func (s *Store) ExpandGroup(ctx context.Context, name string) ([]string, error) {
	members, err := queryStrings(ctx, s.db, `
		SELECT g.name
		FROM genre_groups gg
		JOIN genre_group_members m ON m.group_id = gg.id
		JOIN genres g ON g.id = m.genre_id
		WHERE LOWER(gg.name) = LOWER(?)
		ORDER BY g.name`, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("expand group %q: %w", name, err)
	}
	return members, nil
}

func groupMembers(ctx context.Context, q querier, groupID int64) ([]string, error) {
	members, err := queryStrings(ctx, q, `
		SELECT g.name FROM genre_group_members m
		JOIN genres g ON g.id = m.genre_id
		WHERE m.group_id = ?
		ORDER BY g.name`, groupID)
	if err != nil {
		return nil, fmt.Errorf("query group members: %w", err)
	}
	return members, nil
}
