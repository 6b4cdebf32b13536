package mirror

import (
	"context"
)

// Repository is the storage contract for mirror records.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Create inserts a new record. A positive user.ID is stored as-is (the
	// directory id); a zero ID makes the store allocate a surrogate id.
	// Returns common.ErrAlreadyExists on a unique-constraint conflict.
	Create(ctx context.Context, user *User) (*User, error)

	// UpdateAvatar sets the avatar storage key, the only field that may
	// change after creation. Returns common.ErrNotFound for an unknown id.
	UpdateAvatar(ctx context.Context, id int64, key string) error
}
