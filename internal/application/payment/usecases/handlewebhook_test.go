package usecases

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	activation "marketplace/internal/application/activation/usecases"
	"marketplace/internal/application/licensing"
	"marketplace/internal/application/payment/paymentgateway"
	"marketplace/internal/domain/purchase"
	purchasevo "marketplace/internal/domain/purchase/valueobjects"
	sharedvo "marketplace/internal/domain/shared/valueobjects"
	"marketplace/internal/domain/user"
	"marketplace/internal/infrastructure/persistence/migrations"
	"marketplace/internal/infrastructure/repository"
	"marketplace/internal/shared/biztime"
	"marketplace/internal/shared/config"
	"marketplace/internal/shared/db"
	apperrors "marketplace/internal/shared/errors"
	"marketplace/internal/shared/logger"
)

type stubLicensing struct {
	plans []licensing.Plan
}

func (s *stubLicensing) ListPlans(_ context.Context) ([]licensing.Plan, error) {
	return s.plans, nil
}

func (s *stubLicensing) GetPlan(_ context.Context, planID uint) (*licensing.Plan, error) {
	for i := range s.plans {
		if s.plans[i].ID == planID {
			return &s.plans[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError("plan not found")
}

func (s *stubLicensing) CreateSubscription(_ context.Context, _ licensing.CreateSubscriptionRequest) (*licensing.CreateSubscriptionResult, error) {
	return &licensing.CreateSubscriptionResult{Licenses: 1}, nil
}

func (s *stubLicensing) ValidateIdentity(_ context.Context, _ string) (*licensing.IdentityCheck, error) {
	return &licensing.IdentityCheck{Allowed: true}, nil
}

// stubGateway scripts GetPayment responses in call order.
type stubGateway struct {
	responses []*paymentgateway.PaymentInfo
	calls     int
}

func (s *stubGateway) CreatePreference(_ context.Context, _ paymentgateway.PreferenceRequest) (*paymentgateway.Preference, error) {
	return &paymentgateway.Preference{ID: "pref-1", InitPoint: "https://checkout.example.com/pref-1"}, nil
}

func (s *stubGateway) GetPayment(_ context.Context, _ string) (*paymentgateway.PaymentInfo, error) {
	s.calls++
	if len(s.responses) == 0 {
		return nil, nil
	}
	info := s.responses[0]
	s.responses = s.responses[1:]
	return info, nil
}

type webhookFixture struct {
	users     *repository.UserRepository
	payments  *repository.PaymentRepository
	purchases *repository.PurchaseRepository
	gateway   *stubGateway
	useCase   *HandleWebhookUseCase
	returnUC  *ProcessReturnUseCase
	sleeps    []time.Duration
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	log := logger.NewLogger()
	require.NoError(t, migrations.Run(gormDB, log))

	users := repository.NewUserRepository(gormDB)
	payments := repository.NewPaymentRepository(gormDB)
	purchases := repository.NewPurchaseRepository(gormDB, log)
	subs := repository.NewSubscriptionRepository(gormDB)

	licClient := &stubLicensing{plans: []licensing.Plan{
		{ID: 2, Name: "Plan Equipo Anual", Price: 4990, Currency: "MXN", Licenses: 5},
		{ID: 3, Name: "Plan Individual", Price: 990, Currency: "MXN", Licenses: 1},
	}}
	activateUC := activation.NewActivatePlanUseCase(users, purchases, payments, subs,
		licClient, db.NewTransactionManager(gormDB), nil, "https://portal.example.com", log)

	gateway := &stubGateway{}
	cfg := config.WebhookConfig{
		FallbackPlanID:       2,
		MaxPlanID:            10,
		VerifyAttempts:       3,
		VerifyBackoffSeconds: 2,
		FallbackWindowHours:  24,
		FallbackRole:         "free",
	}

	f := &webhookFixture{
		users:     users,
		payments:  payments,
		purchases: purchases,
		gateway:   gateway,
	}
	f.useCase = NewHandleWebhookUseCase(payments, purchases, users, gateway, activateUC, cfg, log)
	f.useCase.sleep = func(d time.Duration) { f.sleeps = append(f.sleeps, d) }
	f.returnUC = NewProcessReturnUseCase(payments, gateway, activateUC,
		activation.NewGetCredentialsUseCase(users, "https://portal.example.com"), cfg, log)
	return f
}

func (f *webhookFixture) createUser(t *testing.T) *user.User {
	t.Helper()
	usr, err := user.NewUser("ana@example.com", "hash", "Ana", "Lopez")
	require.NoError(t, err)
	usr.SetIdentityNumber("XAXX010101000")
	usr.SetPhoneNumber("+525511112222")
	usr.MarkPhoneVerified()
	require.NoError(t, f.users.Create(context.Background(), usr))
	return usr
}

func (f *webhookFixture) seedPurchase(t *testing.T, userID, planID uint) {
	t.Helper()
	p, err := purchase.NewPlanPurchase(userID, planID, "Plan Individual",
		purchasevo.CategoryTeam(), sharedvo.NewMoneyFromFloat(990, "MXN"), 1)
	require.NoError(t, err)
	require.NoError(t, f.purchases.Create(context.Background(), p))
}

func approvedInfo(id, reference string) *paymentgateway.PaymentInfo {
	return &paymentgateway.PaymentInfo{
		ID:                id,
		Status:            "approved",
		StatusDetail:      "accredited",
		ExternalReference: reference,
		Amount:            4990,
		Currency:          "MXN",
	}
}

func TestWebhookIgnoresNonPaymentTypes(t *testing.T) {
	f := newWebhookFixture(t)
	assert.Equal(t, AckOK, f.useCase.Execute(context.Background(), WebhookCommand{Type: "merchant_order", DataID: "1"}))
	assert.Equal(t, AckOK, f.useCase.Execute(context.Background(), WebhookCommand{Type: "payment"}))
	assert.Zero(t, f.gateway.calls)
}

func TestWebhookActivatesApprovedPayment(t *testing.T) {
	f := newWebhookFixture(t)
	usr := f.createUser(t)
	ctx := context.Background()

	ref := BuildReference(2, usr.ID(), biztime.NowUTC())
	f.gateway.responses = []*paymentgateway.PaymentInfo{approvedInfo("mp-777", ref)}

	ack := f.useCase.Execute(ctx, WebhookCommand{Type: "payment", DataID: "mp-777"})
	assert.Equal(t, AckPlanActivated, ack)

	pay, err := f.payments.FindByProviderPaymentID(ctx, "mp-777")
	require.NoError(t, err)
	require.NotNil(t, pay)
	assert.True(t, pay.Status().IsCompleted())

	active, err := f.purchases.FindActiveByUserID(ctx, usr.ID())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, uint(2), active[0].ExternalPlanID())
}

func TestWebhookReplayDedups(t *testing.T) {
	f := newWebhookFixture(t)
	usr := f.createUser(t)
	ctx := context.Background()

	ref := BuildReference(2, usr.ID(), biztime.NowUTC())
	f.gateway.responses = []*paymentgateway.PaymentInfo{approvedInfo("mp-777", ref)}

	require.Equal(t, AckPlanActivated, f.useCase.Execute(ctx, WebhookCommand{Type: "payment", DataID: "mp-777"}))

	// Replay: the gateway is not consulted again.
	before := f.gateway.calls
	assert.Equal(t, AckAlreadyProcessed, f.useCase.Execute(ctx, WebhookCommand{Type: "payment", DataID: "mp-777"}))
	assert.Equal(t, before, f.gateway.calls)
}

func TestWebhookRetriesVerificationWithBackoff(t *testing.T) {
	f := newWebhookFixture(t)
	usr := f.createUser(t)
	ctx := context.Background()

	ref := BuildReference(2, usr.ID(), biztime.NowUTC())
	// Payment becomes queryable on the third attempt.
	f.gateway.responses = []*paymentgateway.PaymentInfo{nil, nil, approvedInfo("mp-888", ref)}

	ack := f.useCase.Execute(ctx, WebhookCommand{Type: "payment", DataID: "mp-888"})
	assert.Equal(t, AckPlanActivated, ack)
	assert.Equal(t, 3, f.gateway.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, f.sleeps)
}

func TestWebhookUnsettledPaymentAcked(t *testing.T) {
	f := newWebhookFixture(t)
	usr := f.createUser(t)
	ctx := context.Background()

	info := approvedInfo("mp-999", BuildReference(2, usr.ID(), biztime.NowUTC()))
	info.Status = "rejected"
	f.gateway.responses = []*paymentgateway.PaymentInfo{info}

	assert.Equal(t, AckPending, f.useCase.Execute(ctx, WebhookCommand{Type: "payment", DataID: "mp-999"}))

	pay, err := f.payments.FindByProviderPaymentID(ctx, "mp-999")
	require.NoError(t, err)
	assert.Nil(t, pay)
}

func TestWebhookApprovedButNotAccreditedStaysPending(t *testing.T) {
	f := newWebhookFixture(t)
	usr := f.createUser(t)
	ctx := context.Background()

	info := approvedInfo("mp-998", BuildReference(2, usr.ID(), biztime.NowUTC()))
	info.StatusDetail = "pending_capture"
	f.gateway.responses = []*paymentgateway.PaymentInfo{info}

	assert.Equal(t, AckPending, f.useCase.Execute(ctx, WebhookCommand{Type: "payment", DataID: "mp-998"}))

	active, err := f.purchases.FindActiveByUserID(ctx, usr.ID())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestWebhookLegacyReferenceUsesFallbackPlan(t *testing.T) {
	f := newWebhookFixture(t)
	usr := f.createUser(t)
	ctx := context.Background()

	ref := fmt.Sprintf("premium_subscription_%d_pref123", usr.ID())
	f.gateway.responses = []*paymentgateway.PaymentInfo{approvedInfo("mp-555", ref)}

	ack := f.useCase.Execute(ctx, WebhookCommand{Type: "payment", DataID: "mp-555"})
	assert.Equal(t, AckPlanActivated, ack)

	active, err := f.purchases.FindActiveByUserID(ctx, usr.ID())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, uint(2), active[0].ExternalPlanID(), "legacy reference resolves to fallback plan")
}

func TestWebhookUnparseableReferenceKeepsMoneyVisible(t *testing.T) {
	f := newWebhookFixture(t)
	f.createUser(t)
	ctx := context.Background()

	f.gateway.responses = []*paymentgateway.PaymentInfo{approvedInfo("mp-444", "order_garbage")}

	ack := f.useCase.Execute(ctx, WebhookCommand{Type: "payment", DataID: "mp-444"})
	assert.Equal(t, AckPaymentReceivedActivationFailed, ack)

	// The verified money is recorded even though activation never ran.
	pay, err := f.payments.FindByProviderPaymentID(ctx, "mp-444")
	require.NoError(t, err)
	require.NotNil(t, pay)
	assert.Equal(t, int64(499000), pay.Amount().AmountInCents())
}

func TestWebhookFallbackGuessWhenUnverifiable(t *testing.T) {
	f := newWebhookFixture(t)
	usr := f.createUser(t)
	ctx := context.Background()

	// Gateway never surfaces the payment.
	f.gateway.responses = nil

	ack := f.useCase.Execute(ctx, WebhookCommand{Type: "payment", DataID: "mp-333"})
	assert.Equal(t, AckFallbackActivated, ack)
	assert.Equal(t, 3, f.gateway.calls)

	active, err := f.purchases.FindActiveByUserID(ctx, usr.ID())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, uint(2), active[0].ExternalPlanID())

	// Replays of the same notification dedup against the recorded
	// provider payment ID.
	assert.Equal(t, AckAlreadyProcessed, f.useCase.Execute(ctx, WebhookCommand{Type: "payment", DataID: "mp-333"}))
}

func TestWebhookPlanGuessScopedToCandidate(t *testing.T) {
	f := newWebhookFixture(t)
	usr := f.createUser(t)
	ctx := context.Background()

	// Another account's fresh checkout must not color the guess.
	other, err := user.NewUser("luis@example.com", "hash", "Luis", "Mora")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(ctx, other))
	f.seedPurchase(t, other.ID(), 3)

	assert.Equal(t, uint(2), f.useCase.guessPlanID(ctx, usr.ID()),
		"no own purchases falls back to the default plan")

	f.seedPurchase(t, usr.ID(), 3)
	assert.Equal(t, uint(3), f.useCase.guessPlanID(ctx, usr.ID()))
}
