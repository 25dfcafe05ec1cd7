package group

import (
	"context"
	"errors"
)

// ErrGroupNotFound is returned when a group record is not found.
var ErrGroupNotFound = errors.New("group not found")

// ErrDuplicateGroupName is returned when a group with the same name already exists.
var ErrDuplicateGroupName = errors.New("group name already exists")

// Repository provides CRUD operations on the groups table.
type Repository interface {
	Create(ctx context.Context, g *Group) error
	GetByName(ctx context.Context, name string) (*Group, error)
	// GetByToken resolves a group access token by equality.
	GetByToken(ctx context.Context, token string) (*Group, error)
	// List returns groups with their Complete profile counts, ordered by
	// name. Archived groups are excluded unless includeArchived is set.
	List(ctx context.Context, includeArchived bool) ([]WithCount, error)
	// Update applies a partial mutation. A rename cascades to all member
	// profiles inside the same transaction; a failure anywhere rolls the
	// whole mutation back.
	Update(ctx context.Context, name string, upd Update) (*Group, error)
	RegenerateToken(ctx context.Context, name string) (*Group, error)
	// Delete removes the group only. Member profiles are orphaned, not
	// cascaded; see the registry design notes.
	Delete(ctx context.Context, name string) error
	MarkHasProfiles(ctx context.Context, name string) error
}
