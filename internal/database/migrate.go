package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brightwave/profiler/internal/catalog"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS staff_accounts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
		change_password_on_login BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS profiler_types (
		name TEXT PRIMARY KEY,
		filename TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS groups (
		name TEXT PRIMARY KEY,
		display_as TEXT NOT NULL,
		token TEXT NOT NULL UNIQUE,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		profiler_type_name TEXT NOT NULL REFERENCES profiler_types (name),
		has_profiles BOOLEAN NOT NULL DEFAULT FALSE,
		emoji TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		group_name TEXT NOT NULL,
		profiler_type_name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Incomplete'
	)`,
	`CREATE TABLE IF NOT EXISTS answers (
		id TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL,
		question TEXT NOT NULL,
		score INTEGER NOT NULL,
		domain TEXT NOT NULL,
		UNIQUE (profile_id, question)
	)`,
	`CREATE TABLE IF NOT EXISTS configurations (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		write_only BOOLEAN NOT NULL DEFAULT FALSE,
		superuser_only BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_profiles_group_status ON profiles (group_name, status)`,
	`CREATE INDEX IF NOT EXISTS idx_answers_profile ON answers (profile_id)`,
}

// Migrate creates the schema idempotently. Safe to run on every startup.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("running migration: %w", err)
		}
	}
	return nil
}

// SeedProfilerTypes registers every definition file found in the profiler
// directory. The type name is the filename without its extension; existing
// registrations are updated in place.
func (db *DB) SeedProfilerTypes(ctx context.Context, store *catalog.Store, types catalog.Repository) error {
	filenames, err := store.ProfilerFilenames()
	if err != nil {
		return fmt.Errorf("listing profiler definitions: %w", err)
	}

	for _, filename := range filenames {
		pt := &catalog.ProfilerType{
			Name:     strings.TrimSuffix(filename, ".json"),
			Filename: filename,
		}
		if err := types.Upsert(ctx, pt); err != nil {
			return fmt.Errorf("registering profiler type %s: %w", pt.Name, err)
		}
		slog.Debug("registered profiler type", "name", pt.Name, "filename", pt.Filename)
	}

	return nil
}
