package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brightwave/profiler/internal/catalog"
	"github.com/brightwave/profiler/internal/group"
)

// SeedDemoData creates one demo group per registered profiler type on an
// empty database. Intended for local development only.
func SeedDemoData(ctx context.Context, groups group.Repository, types catalog.Repository) error {
	existing, err := groups.List(ctx, true)
	if err != nil {
		return fmt.Errorf("listing groups: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	registered, err := types.List(ctx)
	if err != nil {
		return fmt.Errorf("listing profiler types: %w", err)
	}

	for _, pt := range registered {
		g := &group.Group{
			Name:             "demo-" + pt.Name,
			DisplayAs:        "Demo " + pt.Name,
			ProfilerTypeName: pt.Name,
			Emoji:            group.DefaultEmoji,
		}
		if err := groups.Create(ctx, g); err != nil {
			return fmt.Errorf("creating demo group for %s: %w", pt.Name, err)
		}
		slog.Info("created demo group", "name", g.Name, "token", g.Token)
	}

	return nil
}
