package payment

import (
	"context"
	"time"
)

// Repository persists payment records.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	Update(ctx context.Context, p *Payment) error
	FindByID(ctx context.Context, id uint) (*Payment, error)
	// FindByProviderPaymentID returns nil, nil when no record exists.
	FindByProviderPaymentID(ctx context.Context, providerPaymentID string) (*Payment, error)
	FindByUserID(ctx context.Context, userID uint) ([]*Payment, error)
	// FindCompletedSince lists completed payments created at or after
	// the cutoff, newest first. Used by webhook fallback correlation.
	FindCompletedSince(ctx context.Context, cutoff time.Time) ([]*Payment, error)
}
