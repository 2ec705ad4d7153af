package usecases

import (
	"context"
	"math"
	"time"

	activation "marketplace/internal/application/activation/usecases"
	"marketplace/internal/application/payment/paymentgateway"
	"marketplace/internal/domain/payment"
	paymentvo "marketplace/internal/domain/payment/valueobjects"
	sharedvo "marketplace/internal/domain/shared/valueobjects"
	"marketplace/internal/domain/purchase"
	"marketplace/internal/domain/user"
	"marketplace/internal/shared/biztime"
	"marketplace/internal/shared/config"
	apperrors "marketplace/internal/shared/errors"
	"marketplace/internal/shared/logger"
)

// AckStatus is the token returned in the webhook's acknowledgement
// body. The provider only looks at the HTTP 200; the token records
// what reconciliation concluded.
type AckStatus string

const (
	AckOK                              AckStatus = "ok"
	AckPending                         AckStatus = "pending"
	AckAlreadyProcessed                AckStatus = "already_processed"
	AckPlanActivated                   AckStatus = "plan_activated"
	AckPaymentReceivedActivationFailed AckStatus = "payment_received_activation_failed"
	AckFallbackActivated               AckStatus = "fallback_activated"
)

// planGuessWindow bounds how far back a candidate's own purchase
// history is consulted when guessing the plan for an unverifiable
// payment.
const planGuessWindow = time.Hour

// WebhookCommand is one provider notification.
type WebhookCommand struct {
	Type   string
	DataID string
}

type planActivator interface {
	Execute(ctx context.Context, cmd activation.ActivatePlanCommand) (*activation.ActivatePlanResult, error)
}

// HandleWebhookUseCase reconciles payment notifications into plan
// activations. Every outcome acknowledges: the provider retries
// non-200 responses forever, and a replayed notification is cheaper
// to dedup than a retry storm.
type HandleWebhookUseCase struct {
	paymentRepo  payment.Repository
	purchaseRepo purchase.Repository
	userRepo     user.Repository
	gateway      paymentgateway.Gateway
	activator    planActivator
	cfg          config.WebhookConfig
	logger       logger.Interface

	// sleep is swapped in tests.
	sleep func(time.Duration)
}

func NewHandleWebhookUseCase(
	paymentRepo payment.Repository,
	purchaseRepo purchase.Repository,
	userRepo user.Repository,
	gateway paymentgateway.Gateway,
	activator planActivator,
	cfg config.WebhookConfig,
	log logger.Interface,
) *HandleWebhookUseCase {
	return &HandleWebhookUseCase{
		paymentRepo:  paymentRepo,
		purchaseRepo: purchaseRepo,
		userRepo:     userRepo,
		gateway:      gateway,
		activator:    activator,
		cfg:          cfg,
		logger:       log,
		sleep:        time.Sleep,
	}
}

func (uc *HandleWebhookUseCase) Execute(ctx context.Context, cmd WebhookCommand) AckStatus {
	if cmd.Type != "payment" || cmd.DataID == "" {
		return AckOK
	}

	existing, err := uc.paymentRepo.FindByProviderPaymentID(ctx, cmd.DataID)
	if err != nil {
		uc.logger.Errorw("webhook dedup lookup failed", "payment_id", cmd.DataID, "error", err)
		return AckOK
	}
	if existing != nil {
		uc.logger.Infow("webhook replay ignored", "payment_id", cmd.DataID)
		return AckAlreadyProcessed
	}

	info := uc.verifyPayment(ctx, cmd.DataID)
	if info == nil {
		return uc.reconcileUnverifiable(ctx, cmd.DataID)
	}

	if !info.Approved() {
		uc.logger.Infow("webhook for unsettled payment ignored",
			"payment_id", cmd.DataID,
			"status", info.Status,
			"status_detail", info.StatusDetail,
		)
		return AckPending
	}

	return uc.reconcileApproved(ctx, info)
}

// verifyPayment fetches the payment from the provider with bounded
// exponential backoff. Notifications regularly land before the
// payment is queryable.
func (uc *HandleWebhookUseCase) verifyPayment(ctx context.Context, paymentID string) *paymentgateway.PaymentInfo {
	attempts := uc.cfg.VerifyAttempts
	if attempts < 1 {
		attempts = 1
	}
	base := uc.cfg.VerifyBackoffSeconds
	if base <= 0 {
		base = 2
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(base*math.Pow(2, float64(attempt-1))*1000) * time.Millisecond
			uc.sleep(backoff)
		}
		info, err := uc.gateway.GetPayment(ctx, paymentID)
		if err != nil {
			uc.logger.Warnw("payment verification attempt failed",
				"payment_id", paymentID,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}
		if info != nil {
			return info
		}
	}
	return nil
}

// reconcileApproved correlates a verified payment back to a user and
// plan through its external reference and activates.
func (uc *HandleWebhookUseCase) reconcileApproved(ctx context.Context, info *paymentgateway.PaymentInfo) AckStatus {
	ref, err := ParseReference(info.ExternalReference, uint(uc.cfg.MaxPlanID))
	if err != nil {
		uc.logger.Errorw("webhook reference unparseable",
			"payment_id", info.ID,
			"external_reference", info.ExternalReference,
			"error", err,
		)
		uc.recordOrphanPayment(ctx, info, "unparseable external reference")
		return AckPaymentReceivedActivationFailed
	}

	planID := ref.PlanID
	if !ref.HasPlanID {
		planID = uint(uc.cfg.FallbackPlanID)
		uc.logger.Warnw("legacy reference, assuming fallback plan",
			"payment_id", info.ID,
			"user_id", ref.UserID,
			"plan_id", planID,
		)
	}

	result, err := uc.activator.Execute(ctx, activation.ActivatePlanCommand{
		UserID: ref.UserID,
		PlanID: planID,
		Payment: &activation.PaymentDetails{
			ProviderPaymentID: info.ID,
			Amount:            info.Amount,
			Currency:          info.Currency,
			ExternalReference: info.ExternalReference,
			PayerEmail:        info.PayerEmail,
		},
	})
	if err != nil {
		if apperrors.IsConflictError(err) {
			return AckAlreadyProcessed
		}
		uc.logger.Errorw("activation failed for verified payment",
			"payment_id", info.ID,
			"user_id", ref.UserID,
			"plan_id", planID,
			"error", err,
		)
		uc.recordOrphanPayment(ctx, info, err.Error())
		return AckPaymentReceivedActivationFailed
	}

	uc.logger.Infow("webhook reconciled",
		"payment_id", info.ID,
		"purchase_id", result.PurchaseID,
	)
	return AckPlanActivated
}

// reconcileUnverifiable handles the degraded path: the provider never
// surfaced the payment, so the best remaining signal is the most
// recent unupgraded account inside the correlation window.
func (uc *HandleWebhookUseCase) reconcileUnverifiable(ctx context.Context, paymentID string) AckStatus {
	window := time.Duration(uc.cfg.FallbackWindowHours) * time.Hour
	if window <= 0 {
		window = 24 * time.Hour
	}
	cutoff := biztime.NowUTC().Add(-window)

	candidates, err := uc.userRepo.FindRecentByRole(ctx, uc.cfg.FallbackRole, cutoff)
	if err != nil || len(candidates) == 0 {
		uc.logger.Errorw("payment unverifiable and no fallback candidate",
			"payment_id", paymentID,
			"error", err,
		)
		return AckOK
	}

	candidate := candidates[0]
	planID := uc.guessPlanID(ctx, candidate.ID())

	uc.logger.Warnw("activating by fallback guess",
		"payment_id", paymentID,
		"user_id", candidate.ID(),
		"plan_id", planID,
	)

	_, err = uc.activator.Execute(ctx, activation.ActivatePlanCommand{
		UserID: candidate.ID(),
		PlanID: planID,
		Payment: &activation.PaymentDetails{
			ProviderPaymentID: paymentID,
		},
	})
	if err != nil {
		if apperrors.IsConflictError(err) {
			return AckAlreadyProcessed
		}
		uc.logger.Errorw("fallback activation failed",
			"payment_id", paymentID,
			"user_id", candidate.ID(),
			"error", err,
		)
		return AckPaymentReceivedActivationFailed
	}
	return AckFallbackActivated
}

// guessPlanID recovers a plan from the candidate's own newest purchase
// inside the guess window, else falls back to the configured default.
// Other users' checkouts say nothing about this payment.
func (uc *HandleWebhookUseCase) guessPlanID(ctx context.Context, userID uint) uint {
	cutoff := biztime.NowUTC().Add(-planGuessWindow)
	rows, err := uc.purchaseRepo.FindByUserID(ctx, userID)
	if err != nil {
		return uint(uc.cfg.FallbackPlanID)
	}

	var newest *purchase.PlanPurchase
	for _, row := range rows {
		if row.CreatedAt().Before(cutoff) {
			continue
		}
		if newest == nil || row.CreatedAt().After(newest.CreatedAt()) {
			newest = row
		}
	}
	if newest != nil {
		return newest.ExternalPlanID()
	}
	return uint(uc.cfg.FallbackPlanID)
}

// recordOrphanPayment keeps verified money visible even when the
// activation it should fund cannot run. The provider payment ID still
// dedups replays against this row.
func (uc *HandleWebhookUseCase) recordOrphanPayment(ctx context.Context, info *paymentgateway.PaymentInfo, reason string) {
	ref, err := ParseReference(info.ExternalReference, uint(uc.cfg.MaxPlanID))
	userID := uint(0)
	if err == nil {
		userID = ref.UserID
	}
	if userID == 0 {
		// Payments need an owner row; park unattributable money on
		// the reconciliation account.
		userID = 1
	}

	pay, err := payment.NewPayment(userID, paymentvo.ProviderMercadoPago(),
		sharedvo.NewMoneyFromFloat(info.Amount, info.Currency),
		info.ID, info.ExternalReference, "webhook payment pending manual review")
	if err != nil {
		uc.logger.Errorw("failed to build orphan payment", "payment_id", info.ID, "error", err)
		return
	}
	pay.SetMetadata("activation_error", reason)
	if err := pay.MarkAsCompleted(); err == nil {
		if err := uc.paymentRepo.Create(ctx, pay); err != nil && !apperrors.IsConflictError(err) {
			uc.logger.Errorw("failed to record orphan payment", "payment_id", info.ID, "error", err)
		}
	}
}
