package staff

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

// Create inserts a new staff account record.
func (r *PostgresRepository) Create(ctx context.Context, a *Account) error {
	query := `
		INSERT INTO staff_accounts (email, password_hash, is_active, is_verified, is_superuser, change_password_on_login)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		a.Email, a.PasswordHash, a.IsActive, a.IsVerified, a.IsSuperuser, a.ChangePasswordOnLogin,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting staff account: %w", err)
	}

	return nil
}

// GetByID retrieves a single account by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByEmail retrieves a single account by its unique email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return r.getOne(ctx, `WHERE email = $1`, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*Account, error) {
	query := `
		SELECT id, email, password_hash, is_active, is_verified, is_superuser, change_password_on_login, created_at, updated_at
		FROM staff_accounts ` + where

	var a Account
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.IsActive, &a.IsVerified,
		&a.IsSuperuser, &a.ChangePasswordOnLogin, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("querying staff account: %w", err)
	}

	return &a, nil
}

// List retrieves all accounts ordered by email.
func (r *PostgresRepository) List(ctx context.Context) ([]Account, error) {
	query := `
		SELECT id, email, password_hash, is_active, is_verified, is_superuser, change_password_on_login, created_at, updated_at
		FROM staff_accounts
		ORDER BY email ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing staff accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		err := rows.Scan(
			&a.ID, &a.Email, &a.PasswordHash, &a.IsActive, &a.IsVerified,
			&a.IsSuperuser, &a.ChangePasswordOnLogin, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning staff account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating staff account rows: %w", err)
	}

	if accounts == nil {
		accounts = []Account{}
	}

	return accounts, nil
}

// UpdatePassword stores a new password hash and the forced-change flag.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, mustChange bool) error {
	query := `
		UPDATE staff_accounts
		SET password_hash = $2, change_password_on_login = $3, updated_at = now()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, hash, mustChange)
	if err != nil {
		return fmt.Errorf("updating staff password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// CountAll returns the total number of staff accounts.
func (r *PostgresRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM staff_accounts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting staff accounts: %w", err)
	}
	return count, nil
}
