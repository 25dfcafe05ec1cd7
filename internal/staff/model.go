package staff

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a row in the staff_accounts table.
type Account struct {
	ID                    uuid.UUID
	Email                 string
	PasswordHash          string
	IsActive              bool
	IsVerified            bool
	IsSuperuser           bool
	ChangePasswordOnLogin bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
