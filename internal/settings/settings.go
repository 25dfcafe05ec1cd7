// Package settings is a gated key/value store for global configuration.
package settings

import (
	"context"
	"errors"
)

// ErrSettingNotFound is returned when a configuration key is absent.
var ErrSettingNotFound = errors.New("configuration key not found")

// ErrWriteOnly is returned when reading a key flagged write-only; the flag
// applies to every caller, superusers included.
var ErrWriteOnly = errors.New("configuration key is write-only")

// ErrSuperuserOnly is returned when a non-superuser reads a key flagged
// superuser-only.
var ErrSuperuserOnly = errors.New("configuration key is superuser-only")

// Setting represents a row in the configurations table.
type Setting struct {
	Key           string
	Value         string
	WriteOnly     bool
	SuperuserOnly bool
}

// Repository provides access to the configurations table.
type Repository interface {
	// Upsert creates the key or replaces its value and flags.
	Upsert(ctx context.Context, s *Setting) error
	Get(ctx context.Context, key string) (*Setting, error)
}

// Read fetches a key and applies its visibility gates for the caller.
func Read(ctx context.Context, repo Repository, key string, superuser bool) (*Setting, error) {
	s, err := repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if s.WriteOnly {
		return nil, ErrWriteOnly
	}
	if s.SuperuserOnly && !superuser {
		return nil, ErrSuperuserOnly
	}

	return s, nil
}
