package usecases

import (
	"context"

	activation "marketplace/internal/application/activation/usecases"
	"marketplace/internal/application/payment/paymentgateway"
	"marketplace/internal/domain/payment"
	"marketplace/internal/shared/config"
	apperrors "marketplace/internal/shared/errors"
	"marketplace/internal/shared/logger"
)

// ReturnCommand is the browser redirect back from checkout. The
// provider appends payment and reference identifiers to the back URL.
type ReturnCommand struct {
	PaymentID         string
	ExternalReference string
	Status            string
}

// ReturnResult tells the storefront what to show the user.
type ReturnResult struct {
	Activated   bool                    `json:"activated"`
	Pending     bool                    `json:"pending"`
	Credentials *activation.Credentials `json:"credentials,omitempty"`
}

// ProcessReturnUseCase handles the success redirect. The webhook is
// the authoritative path; this one exists because the user is sitting
// on the page waiting, and usually wins the race. Whichever path runs
// second lands on the dedup row and backs off.
type ProcessReturnUseCase struct {
	paymentRepo payment.Repository
	gateway     paymentgateway.Gateway
	activator   planActivator
	credentials *activation.GetCredentialsUseCase
	cfg         config.WebhookConfig
	logger      logger.Interface
}

func NewProcessReturnUseCase(
	paymentRepo payment.Repository,
	gateway paymentgateway.Gateway,
	activator planActivator,
	credentials *activation.GetCredentialsUseCase,
	cfg config.WebhookConfig,
	log logger.Interface,
) *ProcessReturnUseCase {
	return &ProcessReturnUseCase{
		paymentRepo: paymentRepo,
		gateway:     gateway,
		activator:   activator,
		credentials: credentials,
		cfg:         cfg,
		logger:      log,
	}
}

func (uc *ProcessReturnUseCase) Execute(ctx context.Context, cmd ReturnCommand) (*ReturnResult, error) {
	if cmd.Status != "" && cmd.Status != "approved" {
		return &ReturnResult{Pending: true}, nil
	}

	ref, err := ParseReference(cmd.ExternalReference, uint(uc.cfg.MaxPlanID))
	if err != nil {
		return nil, apperrors.NewBadRequestError("unrecognized payment reference")
	}

	// Webhook may have settled this already.
	if cmd.PaymentID != "" {
		existing, err := uc.paymentRepo.FindByProviderPaymentID(ctx, cmd.PaymentID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return uc.resultWithCredentials(ctx, ref.UserID, true), nil
		}
	}

	info, err := uc.verify(ctx, cmd.PaymentID)
	if err != nil {
		return nil, err
	}
	if info != nil && !info.Approved() {
		// Redirect raced ahead of settlement; the webhook finishes it.
		return &ReturnResult{Pending: true}, nil
	}

	planID := ref.PlanID
	if !ref.HasPlanID {
		planID = uint(uc.cfg.FallbackPlanID)
	}

	details := &activation.PaymentDetails{
		ProviderPaymentID: cmd.PaymentID,
		ExternalReference: cmd.ExternalReference,
	}
	if info != nil {
		details = &activation.PaymentDetails{
			ProviderPaymentID: info.ID,
			Amount:            info.Amount,
			Currency:          info.Currency,
			ExternalReference: info.ExternalReference,
			PayerEmail:        info.PayerEmail,
		}
	} else {
		// Provider never surfaced the payment, but the user came back
		// on the success URL holding a reference this service minted.
		// Activate on that signal rather than stranding a paid user;
		// the payment row carries no verified amount.
		uc.logger.Warnw("activating on unverified success return",
			"payment_id", cmd.PaymentID,
			"external_reference", cmd.ExternalReference,
			"user_id", ref.UserID,
			"plan_id", planID,
		)
	}

	result, err := uc.activator.Execute(ctx, activation.ActivatePlanCommand{
		UserID:  ref.UserID,
		PlanID:  planID,
		Payment: details,
	})
	if err != nil {
		if apperrors.IsConflictError(err) {
			return uc.resultWithCredentials(ctx, ref.UserID, true), nil
		}
		return nil, err
	}

	return &ReturnResult{
		Activated:   true,
		Credentials: &result.Credentials,
	}, nil
}

func (uc *ProcessReturnUseCase) verify(ctx context.Context, paymentID string) (*paymentgateway.PaymentInfo, error) {
	if paymentID == "" {
		return nil, nil
	}
	info, err := uc.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		uc.logger.Warnw("return-path payment verification failed",
			"payment_id", paymentID,
			"error", err,
		)
		return nil, nil
	}
	return info, nil
}

func (uc *ProcessReturnUseCase) resultWithCredentials(ctx context.Context, userID uint, activated bool) *ReturnResult {
	result := &ReturnResult{Activated: activated}
	creds, err := uc.credentials.Execute(ctx, activation.GetCredentialsQuery{UserID: userID})
	if err == nil {
		result.Credentials = creds
	}
	return result
}
