package user

import (
	"context"
	"time"
)

// Repository persists marketplace accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	// FindByEmail returns nil, nil when no account exists.
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByVerificationToken(ctx context.Context, token string) (*User, error)
	// FindRecentByRole lists accounts with the given role created at
	// or after the cutoff, newest first. Used by webhook fallback
	// correlation.
	FindRecentByRole(ctx context.Context, role string, cutoff time.Time) ([]*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
