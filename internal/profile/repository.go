package profile

import (
	"context"
	"errors"
)

// ErrProfileNotFound is returned when no profile matches the id, or when a
// profile exists but is in the wrong status for the caller. The two cases
// are deliberately indistinguishable.
var ErrProfileNotFound = errors.New("profile not found")

// Repository provides operations on the profiles and answers tables.
type Repository interface {
	Create(ctx context.Context, p *Profile) error
	// GetByIDAndStatus returns the profile only when it is in the given
	// status; otherwise ErrProfileNotFound.
	GetByIDAndStatus(ctx context.Context, id, status string) (*Profile, error)
	// UpdateName renames the profile only while it is in the given status.
	UpdateName(ctx context.Context, id, status, name string) (*Profile, error)
	// Complete transitions Incomplete -> Complete. Profiles already
	// Complete report ErrProfileNotFound, keeping the transition monotonic.
	Complete(ctx context.Context, id string) (*Profile, error)
	// Delete removes the profile and all its answers atomically.
	Delete(ctx context.Context, id string) error
	// ListCompleteByGroup returns the group's Complete profiles ordered by
	// name.
	ListCompleteByGroup(ctx context.Context, groupName string) ([]Profile, error)

	// UpsertAnswer records a score. An existing (profile, question) row
	// keeps its id and domain and only the score is overwritten; otherwise
	// a new row is inserted as given. Reports whether a row was created.
	UpsertAnswer(ctx context.Context, a *Answer) (bool, error)
	ListAnswers(ctx context.Context, profileID string) ([]Answer, error)
}
