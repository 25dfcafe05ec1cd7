package catalog

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

// Upsert inserts a profiler type or updates its filename.
func (r *PostgresRepository) Upsert(ctx context.Context, pt *ProfilerType) error {
	query := `
		INSERT INTO profiler_types (name, filename)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET filename = EXCLUDED.filename`

	if _, err := r.pool.Exec(ctx, query, pt.Name, pt.Filename); err != nil {
		return fmt.Errorf("upserting profiler type: %w", err)
	}
	return nil
}

// GetByName retrieves a profiler type by its unique name.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*ProfilerType, error) {
	query := `
		SELECT name, filename
		FROM profiler_types
		WHERE name = $1`

	var pt ProfilerType
	err := r.pool.QueryRow(ctx, query, name).Scan(&pt.Name, &pt.Filename)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfilerTypeNotFound
		}
		return nil, fmt.Errorf("querying profiler type: %w", err)
	}

	return &pt, nil
}

// List retrieves all profiler types ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]ProfilerType, error) {
	query := `
		SELECT name, filename
		FROM profiler_types
		ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing profiler types: %w", err)
	}
	defer rows.Close()

	var types []ProfilerType
	for rows.Next() {
		var pt ProfilerType
		if err := rows.Scan(&pt.Name, &pt.Filename); err != nil {
			return nil, fmt.Errorf("scanning profiler type row: %w", err)
		}
		types = append(types, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profiler type rows: %w", err)
	}

	if types == nil {
		types = []ProfilerType{}
	}

	return types, nil
}
