package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
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

// Upsert creates or replaces a configuration entry.
func (r *PostgresRepository) Upsert(ctx context.Context, s *Setting) error {
	query := `
		INSERT INTO configurations (key, value, write_only, superuser_only)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value,
		              write_only = EXCLUDED.write_only,
		              superuser_only = EXCLUDED.superuser_only`

	if _, err := r.pool.Exec(ctx, query, s.Key, s.Value, s.WriteOnly, s.SuperuserOnly); err != nil {
		return fmt.Errorf("upserting configuration: %w", err)
	}

	return nil
}

// Get retrieves a configuration entry by key.
func (r *PostgresRepository) Get(ctx context.Context, key string) (*Setting, error) {
	query := `
		SELECT key, value, write_only, superuser_only
		FROM configurations
		WHERE key = $1`

	var s Setting
	err := r.pool.QueryRow(ctx, query, key).Scan(&s.Key, &s.Value, &s.WriteOnly, &s.SuperuserOnly)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingNotFound
		}
		return nil, fmt.Errorf("querying configuration: %w", err)
	}

	return &s, nil
}
