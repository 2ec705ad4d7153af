package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/domain/payment"
	paymentvo "marketplace/internal/domain/payment/valueobjects"
	sharedvo "marketplace/internal/domain/shared/valueobjects"
	apperrors "marketplace/internal/shared/errors"
)

func newCompletedPayment(t *testing.T, providerPaymentID string) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(1, paymentvo.ProviderMercadoPago(),
		sharedvo.NewMoneyFromFloat(4990, "MXN"), providerPaymentID,
		"plan_subscription_2_1_20260829_120000", "plan purchase")
	require.NoError(t, err)
	require.NoError(t, p.MarkAsCompleted())
	return p
}

func TestPaymentRepositoryProviderIDUnique(t *testing.T) {
	gormDB := newTestDB(t)
	repo := NewPaymentRepository(gormDB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newCompletedPayment(t, "mp-1")))

	// A second row with the same provider payment ID is the webhook
	// replay race; it must surface as a conflict.
	err := repo.Create(ctx, newCompletedPayment(t, "mp-1"))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))

	// Internal payments carry no provider ID and never collide.
	free1, err := payment.NewPayment(1, paymentvo.ProviderInternal(),
		sharedvo.NewMoney(0, "MXN"), "", "", "free plan grant")
	require.NoError(t, err)
	free2, err := payment.NewPayment(2, paymentvo.ProviderInternal(),
		sharedvo.NewMoney(0, "MXN"), "", "", "free plan grant")
	require.NoError(t, err)
	assert.NoError(t, repo.Create(ctx, free1))
	assert.NoError(t, repo.Create(ctx, free2))
}

func TestPaymentRepositoryFindByProviderPaymentID(t *testing.T) {
	gormDB := newTestDB(t)
	repo := NewPaymentRepository(gormDB)
	ctx := context.Background()

	p := newCompletedPayment(t, "mp-2")
	p.SetMetadata("payer_email", "ana@example.com")
	require.NoError(t, repo.Create(ctx, p))

	found, err := repo.FindByProviderPaymentID(ctx, "mp-2")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, p.ID(), found.ID())
	assert.True(t, found.Status().IsCompleted())
	assert.Equal(t, "ana@example.com", found.Metadata()["payer_email"])

	missing, err := repo.FindByProviderPaymentID(ctx, "mp-nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// Empty IDs never match the internal rows.
	blank, err := repo.FindByProviderPaymentID(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, blank)
}
