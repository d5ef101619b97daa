package auth

import "context"

// Store describes the persistence operations required by the auth core.
// Emails reaching the store are already normalized (trimmed, lower-case);
// the store's unique constraint on email is the authoritative guard
// against concurrent duplicate creation, not the caller's pre-check.
type Store interface {
	// Create persists a new user. Returns ErrDuplicateEmail when the
	// email uniqueness constraint is violated.
	Create(ctx context.Context, u *User) error
	// Find returns the user by id, or ErrNotFound.
	Find(ctx context.Context, id string) (*User, error)
	// FindByEmail returns the user by normalized email, or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Update persists all mutable fields of an existing user.
	Update(ctx context.Context, u *User) error
	// Delete removes the user by id, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}
