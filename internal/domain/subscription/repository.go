package subscription

import "context"

// Repository persists the per-user subscription summary.
type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	Update(ctx context.Context, s *Subscription) error
	// FindByUserID returns nil, nil when the user has no summary yet.
	FindByUserID(ctx context.Context, userID uint) (*Subscription, error)
}
