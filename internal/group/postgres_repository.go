package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

const groupColumns = `name, display_as, token, archived, profiler_type_name, has_profiles, emoji`

func scanGroup(row pgx.Row, g *Group) error {
	return row.Scan(&g.Name, &g.DisplayAs, &g.Token, &g.Archived, &g.ProfilerTypeName, &g.HasProfiles, &g.Emoji)
}

// Create inserts a new group record. The access token is generated here.
func (r *PostgresRepository) Create(ctx context.Context, g *Group) error {
	g.Token = uuid.New().String()

	query := `
		INSERT INTO groups (` + groupColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		g.Name, g.DisplayAs, g.Token, g.Archived, g.ProfilerTypeName, g.HasProfiles, g.Emoji,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateGroupName
		}
		return fmt.Errorf("inserting group: %w", err)
	}

	return nil
}

// GetByName retrieves a single group by its primary key.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE name = $1`

	var g Group
	if err := scanGroup(r.pool.QueryRow(ctx, query, name), &g); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("querying group: %w", err)
	}

	return &g, nil
}

// GetByToken resolves a group access token by equality.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE token = $1`

	var g Group
	if err := scanGroup(r.pool.QueryRow(ctx, query, token), &g); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("querying group by token: %w", err)
	}

	return &g, nil
}

// List retrieves groups with their Complete profile counts, ordered by name.
func (r *PostgresRepository) List(ctx context.Context, includeArchived bool) ([]WithCount, error) {
	query := `
		SELECT g.name, g.display_as, g.token, g.archived, g.profiler_type_name, g.has_profiles, g.emoji,
		       count(p.id) AS profile_count
		FROM groups g
		LEFT JOIN profiles p ON p.group_name = g.name AND p.status = 'Complete'
		WHERE ($1 OR NOT g.archived)
		GROUP BY g.name
		ORDER BY g.name ASC`

	rows, err := r.pool.Query(ctx, query, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()

	var groups []WithCount
	for rows.Next() {
		var g WithCount
		err := rows.Scan(
			&g.Name, &g.DisplayAs, &g.Token, &g.Archived, &g.ProfilerTypeName, &g.HasProfiles, &g.Emoji,
			&g.ProfileCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning group row: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating group rows: %w", err)
	}

	if groups == nil {
		groups = []WithCount{}
	}

	return groups, nil
}

// Update applies a partial mutation inside a transaction. A rename updates
// every member profile's group reference in the same transaction, so a
// failure mid-update leaves zero profiles renamed.
func (r *PostgresRepository) Update(ctx context.Context, name string, upd Update) (*Group, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var g Group
	err = scanGroup(tx.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups WHERE name = $1 FOR UPDATE`, name), &g)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("locking group: %w", err)
	}

	if upd.Name != nil && *upd.Name != name {
		newName := *upd.Name

		if _, err := tx.Exec(ctx, `UPDATE profiles SET group_name = $1 WHERE group_name = $2`, newName, name); err != nil {
			return nil, fmt.Errorf("cascading rename to profiles: %w", err)
		}

		if _, err := tx.Exec(ctx, `UPDATE groups SET name = $1 WHERE name = $2`, newName, name); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return nil, ErrDuplicateGroupName
			}
			return nil, fmt.Errorf("renaming group: %w", err)
		}

		g.Name = newName
	}

	if upd.DisplayAs != nil {
		g.DisplayAs = *upd.DisplayAs
	}
	if upd.Archived != nil {
		g.Archived = *upd.Archived
	}
	if upd.Emoji != nil {
		g.Emoji = *upd.Emoji
	}

	_, err = tx.Exec(ctx,
		`UPDATE groups SET display_as = $2, archived = $3, emoji = $4 WHERE name = $1`,
		g.Name, g.DisplayAs, g.Archived, g.Emoji,
	)
	if err != nil {
		return nil, fmt.Errorf("updating group: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing group update: %w", err)
	}

	return &g, nil
}

// RegenerateToken replaces the group access token, invalidating the old one.
func (r *PostgresRepository) RegenerateToken(ctx context.Context, name string) (*Group, error) {
	query := `
		UPDATE groups SET token = $2
		WHERE name = $1
		RETURNING ` + groupColumns

	var g Group
	if err := scanGroup(r.pool.QueryRow(ctx, query, name, uuid.New().String()), &g); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("regenerating group token: %w", err)
	}

	return &g, nil
}

// Delete removes a group. Profiles keep their stale group reference.
func (r *PostgresRepository) Delete(ctx context.Context, name string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM groups WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting group: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrGroupNotFound
	}

	return nil
}

// MarkHasProfiles flips the has_profiles flag once a profile joins the group.
func (r *PostgresRepository) MarkHasProfiles(ctx context.Context, name string) error {
	result, err := r.pool.Exec(ctx, `UPDATE groups SET has_profiles = TRUE WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("marking group has_profiles: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrGroupNotFound
	}

	return nil
}
