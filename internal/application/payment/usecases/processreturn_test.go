package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/application/payment/paymentgateway"
	"marketplace/internal/shared/biztime"
	apperrors "marketplace/internal/shared/errors"
)

func TestReturnActivatesVerifiedPayment(t *testing.T) {
	f := newWebhookFixture(t)
	usr := f.createUser(t)
	ctx := context.Background()

	ref := BuildReference(2, usr.ID(), biztime.NowUTC())
	f.gateway.responses = []*paymentgateway.PaymentInfo{approvedInfo("mp-100", ref)}

	res, err := f.returnUC.Execute(ctx, ReturnCommand{
		PaymentID:         "mp-100",
		ExternalReference: ref,
		Status:            "approved",
	})
	require.NoError(t, err)
	assert.True(t, res.Activated)
	require.NotNil(t, res.Credentials)
	assert.NotEmpty(t, res.Credentials.Password)
}

func TestReturnNonApprovedStatusPending(t *testing.T) {
	f := newWebhookFixture(t)
	usr := f.createUser(t)

	ref := BuildReference(2, usr.ID(), biztime.NowUTC())
	res, err := f.returnUC.Execute(context.Background(), ReturnCommand{
		PaymentID:         "mp-101",
		ExternalReference: ref,
		Status:            "pending",
	})
	require.NoError(t, err)
	assert.True(t, res.Pending)
	assert.False(t, res.Activated)
	assert.Zero(t, f.gateway.calls)
}

func TestReturnVerifiedUnsettledPaymentStaysPending(t *testing.T) {
	f := newWebhookFixture(t)
	usr := f.createUser(t)
	ctx := context.Background()

	ref := BuildReference(2, usr.ID(), biztime.NowUTC())
	info := approvedInfo("mp-102", ref)
	info.StatusDetail = "pending_capture"
	f.gateway.responses = []*paymentgateway.PaymentInfo{info}

	res, err := f.returnUC.Execute(ctx, ReturnCommand{
		PaymentID:         "mp-102",
		ExternalReference: ref,
		Status:            "approved",
	})
	require.NoError(t, err)
	assert.True(t, res.Pending)

	active, err := f.purchases.FindActiveByUserID(ctx, usr.ID())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestReturnActivatesWhenPaymentUnverifiable(t *testing.T) {
	f := newWebhookFixture(t)
	usr := f.createUser(t)
	ctx := context.Background()

	// The provider never surfaces the payment, but the user landed on
	// the success URL carrying a reference this service minted.
	ref := BuildReference(2, usr.ID(), biztime.NowUTC())
	f.gateway.responses = nil

	res, err := f.returnUC.Execute(ctx, ReturnCommand{
		PaymentID:         "mp-103",
		ExternalReference: ref,
		Status:            "approved",
	})
	require.NoError(t, err)
	assert.True(t, res.Activated)
	require.NotNil(t, res.Credentials)

	active, err := f.purchases.FindActiveByUserID(ctx, usr.ID())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, uint(2), active[0].ExternalPlanID())
}

func TestReturnUnverifiableLegacyReferenceUsesFallbackPlan(t *testing.T) {
	f := newWebhookFixture(t)
	usr := f.createUser(t)
	ctx := context.Background()

	f.gateway.responses = nil
	res, err := f.returnUC.Execute(ctx, ReturnCommand{
		ExternalReference: "premium_subscription_1_pref456",
		Status:            "approved",
	})
	require.NoError(t, err)
	assert.True(t, res.Activated)

	active, err := f.purchases.FindActiveByUserID(ctx, usr.ID())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, uint(2), active[0].ExternalPlanID())
}

func TestReturnUnparseableReferenceRejected(t *testing.T) {
	f := newWebhookFixture(t)
	f.createUser(t)

	_, err := f.returnUC.Execute(context.Background(), ReturnCommand{
		PaymentID:         "mp-104",
		ExternalReference: "order_garbage",
		Status:            "approved",
	})
	assert.True(t, apperrors.IsBadRequestError(err))
}

func TestReturnAfterWebhookReturnsCredentials(t *testing.T) {
	f := newWebhookFixture(t)
	usr := f.createUser(t)
	ctx := context.Background()

	ref := BuildReference(2, usr.ID(), biztime.NowUTC())
	f.gateway.responses = []*paymentgateway.PaymentInfo{approvedInfo("mp-105", ref)}
	require.Equal(t, AckPlanActivated, f.useCase.Execute(ctx, WebhookCommand{Type: "payment", DataID: "mp-105"}))

	// The redirect arrives second and lands on the dedup row.
	before := f.gateway.calls
	res, err := f.returnUC.Execute(ctx, ReturnCommand{
		PaymentID:         "mp-105",
		ExternalReference: ref,
		Status:            "approved",
	})
	require.NoError(t, err)
	assert.True(t, res.Activated)
	require.NotNil(t, res.Credentials)
	assert.Equal(t, before, f.gateway.calls)
}
