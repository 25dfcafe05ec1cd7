package catalog

import (
	"context"
	"errors"
)

// ErrProfilerTypeNotFound is returned when a profiler type record is not found.
var ErrProfilerTypeNotFound = errors.New("profiler type not found")

// ProfilerType maps a human-facing questionnaire name to its definition file.
type ProfilerType struct {
	Name     string
	Filename string
}

// Repository provides access to the profiler type registry.
type Repository interface {
	Upsert(ctx context.Context, pt *ProfilerType) error
	GetByName(ctx context.Context, name string) (*ProfilerType, error)
	List(ctx context.Context) ([]ProfilerType, error)
}
