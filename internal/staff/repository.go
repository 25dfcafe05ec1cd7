package staff

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrAccountNotFound is returned when a staff account is not found.
var ErrAccountNotFound = errors.New("staff account not found")

// ErrDuplicateEmail is returned when an account with the same email already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// Repository provides CRUD operations on the staff_accounts table.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context) ([]Account, error)
	// UpdatePassword stores a new password hash and sets the
	// forced-password-change flag to mustChange.
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string, mustChange bool) error
	CountAll(ctx context.Context) (int, error)
}
