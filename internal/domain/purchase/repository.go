package purchase

import "context"

// Repository persists plan purchases. Implementations are expected to
// run overdue purchases through ExpireIfDue on read and persist the
// flip, so callers always observe the settled status.
type Repository interface {
	Create(ctx context.Context, p *PlanPurchase) error
	Update(ctx context.Context, p *PlanPurchase) error
	FindByID(ctx context.Context, id uint) (*PlanPurchase, error)
	FindByUserID(ctx context.Context, userID uint) ([]*PlanPurchase, error)
	// FindActiveByUserID returns the user's currently active purchases.
	FindActiveByUserID(ctx context.Context, userID uint) ([]*PlanPurchase, error)
	// UserHasFreePurchase reports whether the user already holds a
	// free-category purchase in any non-failed state. Backed by a
	// partial unique index so concurrent grants race safely.
	UserHasFreePurchase(ctx context.Context, userID uint) (bool, error)
}
