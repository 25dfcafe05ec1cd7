package profile

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

const profileColumns = `id, name, group_name, profiler_type_name, status`

// Create inserts a new profile record.
func (r *PostgresRepository) Create(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, p.ID, p.Name, p.GroupName, p.ProfilerTypeName, p.Status)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}

	return nil
}

// GetByIDAndStatus retrieves a profile only when it is in the given status.
func (r *PostgresRepository) GetByIDAndStatus(ctx context.Context, id, status string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1 AND status = $2`

	var p Profile
	err := r.pool.QueryRow(ctx, query, id, status).Scan(&p.ID, &p.Name, &p.GroupName, &p.ProfilerTypeName, &p.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("querying profile: %w", err)
	}

	return &p, nil
}

// UpdateName renames a profile while it is in the given status.
func (r *PostgresRepository) UpdateName(ctx context.Context, id, status, name string) (*Profile, error) {
	query := `
		UPDATE profiles SET name = $3
		WHERE id = $1 AND status = $2
		RETURNING ` + profileColumns

	var p Profile
	err := r.pool.QueryRow(ctx, query, id, status, name).Scan(&p.ID, &p.Name, &p.GroupName, &p.ProfilerTypeName, &p.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("renaming profile: %w", err)
	}

	return &p, nil
}

// Complete transitions a profile from Incomplete to Complete. The status
// filter makes the transition monotonic at the storage layer.
func (r *PostgresRepository) Complete(ctx context.Context, id string) (*Profile, error) {
	query := `
		UPDATE profiles SET status = $3
		WHERE id = $1 AND status = $2
		RETURNING ` + profileColumns

	var p Profile
	err := r.pool.QueryRow(ctx, query, id, StatusIncomplete, StatusComplete).
		Scan(&p.ID, &p.Name, &p.GroupName, &p.ProfilerTypeName, &p.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("completing profile: %w", err)
	}

	return &p, nil
}

// Delete removes a profile and its answers in one transaction.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM answers WHERE profile_id = $1`, id); err != nil {
		return fmt.Errorf("deleting profile answers: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing profile delete: %w", err)
	}

	return nil
}

// ListCompleteByGroup returns a group's Complete profiles ordered by name.
func (r *PostgresRepository) ListCompleteByGroup(ctx context.Context, groupName string) ([]Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE group_name = $1 AND status = $2
		ORDER BY name ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, groupName, StatusComplete)
	if err != nil {
		return nil, fmt.Errorf("listing group profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.GroupName, &p.ProfilerTypeName, &p.Status); err != nil {
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profile rows: %w", err)
	}

	if profiles == nil {
		profiles = []Profile{}
	}

	return profiles, nil
}

// UpsertAnswer records a score, overwriting an existing answer's score in
// place. The unique (profile_id, question) index backs the conflict target;
// id and domain of an existing row are never touched.
func (r *PostgresRepository) UpsertAnswer(ctx context.Context, a *Answer) (bool, error) {
	query := `
		INSERT INTO answers (id, profile_id, question, score, domain)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (profile_id, question)
		DO UPDATE SET score = EXCLUDED.score
		RETURNING id, domain, (xmax = 0) AS inserted`

	var inserted bool
	err := r.pool.QueryRow(ctx, query, a.ID, a.ProfileID, a.Question, a.Score, a.Domain).
		Scan(&a.ID, &a.Domain, &inserted)
	if err != nil {
		return false, fmt.Errorf("upserting answer: %w", err)
	}

	return inserted, nil
}

// ListAnswers returns all answers for a profile in question order.
func (r *PostgresRepository) ListAnswers(ctx context.Context, profileID string) ([]Answer, error) {
	query := `
		SELECT id, profile_id, question, score, domain
		FROM answers
		WHERE profile_id = $1
		ORDER BY question ASC`

	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("listing answers: %w", err)
	}
	defer rows.Close()

	var answers []Answer
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.ID, &a.ProfileID, &a.Question, &a.Score, &a.Domain); err != nil {
			return nil, fmt.Errorf("scanning answer row: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating answer rows: %w", err)
	}

	if answers == nil {
		answers = []Answer{}
	}

	return answers, nil
}
