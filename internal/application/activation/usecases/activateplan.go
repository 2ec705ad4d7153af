package usecases

import (
	"context"
	"time"

	"marketplace/internal/application/licensing"
	"marketplace/internal/domain/payment"
	paymentvo "marketplace/internal/domain/payment/valueobjects"
	"marketplace/internal/domain/purchase"
	purchasevo "marketplace/internal/domain/purchase/valueobjects"
	sharedvo "marketplace/internal/domain/shared/valueobjects"
	"marketplace/internal/domain/subscription"
	"marketplace/internal/domain/user"
	"marketplace/internal/infrastructure/email"
	"marketplace/internal/shared/db"
	apperrors "marketplace/internal/shared/errors"
	"marketplace/internal/shared/logger"
)

// PaymentDetails correlates a paid activation with the provider
// payment that funded it. Free activations pass nil and get a
// zero-amount internal payment record instead.
type PaymentDetails struct {
	ProviderPaymentID string
	Amount            float64
	Currency          string
	ExternalReference string
	PayerEmail        string
}

// ActivatePlanCommand requests one plan activation for one user.
type ActivatePlanCommand struct {
	UserID  uint
	PlanID  uint
	Payment *PaymentDetails
}

// Credentials is the portal handoff returned after activation.
type Credentials struct {
	Username  string
	Password  string
	PortalURL string
}

// ActivatePlanResult reports a completed activation.
type ActivatePlanResult struct {
	PurchaseID     uint
	PaymentID      uint
	PlanName       string
	PlanCategory   string
	Licenses       int
	ExpirationDate time.Time
	Credentials    Credentials
}

// ActivatePlanUseCase provisions a plan on the license platform and
// records the grant locally. Nothing is written until the platform
// call succeeds, so a failed activation leaves no partial rows.
type ActivatePlanUseCase struct {
	userRepo         user.Repository
	purchaseRepo     purchase.Repository
	paymentRepo      payment.Repository
	subscriptionRepo subscription.Repository
	licensingClient  licensing.Client
	txManager        *db.TransactionManager
	emailSender      email.Sender
	portalURL        string
	logger           logger.Interface
}

func NewActivatePlanUseCase(
	userRepo user.Repository,
	purchaseRepo purchase.Repository,
	paymentRepo payment.Repository,
	subscriptionRepo subscription.Repository,
	licensingClient licensing.Client,
	txManager *db.TransactionManager,
	emailSender email.Sender,
	portalURL string,
	log logger.Interface,
) *ActivatePlanUseCase {
	return &ActivatePlanUseCase{
		userRepo:         userRepo,
		purchaseRepo:     purchaseRepo,
		paymentRepo:      paymentRepo,
		subscriptionRepo: subscriptionRepo,
		licensingClient:  licensingClient,
		txManager:        txManager,
		emailSender:      emailSender,
		portalURL:        portalURL,
		logger:           log,
	}
}

func (uc *ActivatePlanUseCase) Execute(ctx context.Context, cmd ActivatePlanCommand) (*ActivatePlanResult, error) {
	usr, err := uc.userRepo.FindByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if usr.IdentityNumber() == "" {
		return nil, apperrors.NewActivationError(apperrors.KindIdentityRequired,
			"user has no identity number on file")
	}
	if !usr.PhoneVerified() {
		return nil, apperrors.NewActivationError(apperrors.KindPhoneUnverified,
			"phone number has not been verified")
	}

	plan, err := uc.licensingClient.GetPlan(ctx, cmd.PlanID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NewActivationError(apperrors.KindPlanNotFound,
				"requested plan is not in the catalog")
		}
		return nil, apperrors.NewActivationError(apperrors.KindExternalAPIUnavailable,
			"plan catalog unavailable")
	}

	if !plan.IsFree() && cmd.Payment == nil {
		return nil, apperrors.NewActivationError(apperrors.KindPaymentRequired,
			"paid plan requires checkout, create a payment preference first")
	}

	if plan.IsFree() {
		hasFree, err := uc.purchaseRepo.UserHasFreePurchase(ctx, usr.ID())
		if err != nil {
			return nil, err
		}
		if hasFree {
			return nil, apperrors.NewActivationError(apperrors.KindFreePlanAlreadyGranted,
				"user already holds a free plan")
		}
	}

	// New clients get a freshly generated portal password; returning
	// clients keep the one issued on first registration.
	isNewClient := usr.IsNewClient()
	portalPassword := usr.ExternalPassword()
	if isNewClient {
		portalPassword = user.GeneratePortalPassword()
	}

	result, err := uc.provision(ctx, usr, plan, portalPassword, isNewClient)
	if err != nil {
		return nil, err
	}

	activation, err := uc.persistActivation(ctx, usr, plan, cmd.Payment, portalPassword, result)
	if err != nil {
		return nil, err
	}

	uc.sendCredentials(usr, activation)

	uc.logger.Infow("plan activated",
		"user_id", usr.ID(),
		"plan_id", plan.ID,
		"plan_name", plan.Name,
		"purchase_id", activation.PurchaseID,
	)
	return activation, nil
}

// provision runs the platform registration with one bounded retry:
// when the platform contradicts our view of whether the client
// exists, the flag is flipped and the call repeated once. A second
// contradiction means local and remote state disagree in a way only
// manual review can settle.
func (uc *ActivatePlanUseCase) provision(ctx context.Context, usr *user.User, plan *licensing.Plan, portalPassword string, isNewClient bool) (*licensing.CreateSubscriptionResult, error) {
	req := licensing.CreateSubscriptionRequest{
		PlanID:         plan.ID,
		Email:          usr.Email(),
		Password:       portalPassword,
		FirstName:      usr.FirstName(),
		LastName:       usr.LastName(),
		Phone:          usr.PhoneNumber(),
		IdentityNumber: usr.IdentityNumber(),
		IsNewClient:    isNewClient,
	}

	result, err := uc.licensingClient.CreateSubscription(ctx, req)
	if err == nil {
		return result, nil
	}

	pe, ok := licensing.AsProviderError(err)
	if !ok {
		return nil, apperrors.NewActivationError(apperrors.KindExternalAPIUnavailable, err.Error())
	}

	flipped := req
	switch pe.Kind() {
	case licensing.ProviderErrorAlreadyExists:
		if !isNewClient {
			return nil, apperrors.NewActivationError(apperrors.KindIdentityStateInconsistent, pe.Body)
		}
		flipped.IsNewClient = false
	case licensing.ProviderErrorNotRegistered:
		if isNewClient {
			return nil, apperrors.NewActivationError(apperrors.KindIdentityStateInconsistent, pe.Body)
		}
		flipped.IsNewClient = true
	default:
		return nil, apperrors.NewActivationError(apperrors.KindExternalAPIRejected, pe.Body)
	}

	uc.logger.Warnw("platform contradicted client registration state, retrying flipped",
		"user_id", usr.ID(),
		"was_new_client", isNewClient,
	)

	result, err = uc.licensingClient.CreateSubscription(ctx, flipped)
	if err == nil {
		return result, nil
	}
	if pe, ok := licensing.AsProviderError(err); ok {
		switch pe.Kind() {
		case licensing.ProviderErrorAlreadyExists, licensing.ProviderErrorNotRegistered:
			return nil, apperrors.NewActivationError(apperrors.KindIdentityStateInconsistent, pe.Body)
		default:
			return nil, apperrors.NewActivationError(apperrors.KindExternalAPIRejected, pe.Body)
		}
	}
	return nil, apperrors.NewActivationError(apperrors.KindExternalAPIUnavailable, err.Error())
}

// persistActivation writes the payment record, the purchase, the
// subscription summary and the user's provisioning state in a single
// transaction.
func (uc *ActivatePlanUseCase) persistActivation(ctx context.Context, usr *user.User, plan *licensing.Plan, details *PaymentDetails, portalPassword string, provisioned *licensing.CreateSubscriptionResult) (*ActivatePlanResult, error) {
	var result *ActivatePlanResult

	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		usr.StoreProvisioningResult(usr.Email(), portalPassword,
			provisioned.ClientID, provisioned.UserID, provisioned.Licenses)
		if plan.IsPremium() {
			usr.PromoteToPremium()
		}
		if err := uc.userRepo.Update(txCtx, usr); err != nil {
			return err
		}

		pay, err := uc.buildPayment(usr, plan, details)
		if err != nil {
			return err
		}
		if err := pay.MarkAsCompleted(); err != nil {
			return err
		}
		if err := uc.paymentRepo.Create(txCtx, pay); err != nil {
			return err
		}

		licenses := provisioned.Licenses
		if licenses < 1 {
			licenses = plan.Licenses
		}
		pur, err := purchase.NewPlanPurchase(usr.ID(), plan.ID, plan.Name,
			purchasevo.DeriveCategory(plan.Name, plan.IsFree()),
			sharedvo.NewMoneyFromFloat(plan.Price, plan.Currency), licenses)
		if err != nil {
			return err
		}
		pur.AttachPayment(pay.ID())
		pur.SetMetadata("plan_description", plan.Description)
		if err := pur.Activate(purchase.DefaultDurationDays); err != nil {
			return err
		}
		if err := uc.purchaseRepo.Create(txCtx, pur); err != nil {
			return err
		}

		if err := uc.upsertSubscription(txCtx, usr, plan, pur); err != nil {
			return err
		}

		result = &ActivatePlanResult{
			PurchaseID:     pur.ID(),
			PaymentID:      pay.ID(),
			PlanName:       plan.Name,
			PlanCategory:   pur.Category().String(),
			Licenses:       licenses,
			ExpirationDate: *pur.ExpirationDate(),
			Credentials: Credentials{
				Username:  usr.ExternalUsername(),
				Password:  usr.ExternalPassword(),
				PortalURL: uc.portalURL,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *ActivatePlanUseCase) buildPayment(usr *user.User, plan *licensing.Plan, details *PaymentDetails) (*payment.Payment, error) {
	if details == nil {
		// Free grants still leave a traceable zero-amount record.
		return payment.NewPayment(usr.ID(), paymentvo.ProviderInternal(),
			sharedvo.NewMoney(0, plan.Currency), "", "",
			"free plan grant: "+plan.Name)
	}
	pay, err := payment.NewPayment(usr.ID(), paymentvo.ProviderMercadoPago(),
		sharedvo.NewMoneyFromFloat(details.Amount, details.Currency),
		details.ProviderPaymentID, details.ExternalReference,
		"plan purchase: "+plan.Name)
	if err != nil {
		return nil, err
	}
	if details.PayerEmail != "" {
		pay.SetMetadata("payer_email", details.PayerEmail)
	}
	return pay, nil
}

func (uc *ActivatePlanUseCase) upsertSubscription(ctx context.Context, usr *user.User, plan *licensing.Plan, pur *purchase.PlanPurchase) error {
	sub, err := uc.subscriptionRepo.FindByUserID(ctx, usr.ID())
	if err != nil {
		return err
	}
	isNew := sub == nil
	if isNew {
		sub, err = subscription.NewSubscription(usr.ID())
		if err != nil {
			return err
		}
	}
	sub.ApplyTerm(plan.ID, plan.Name, pur.Category().String(), pur.Amount(),
		*pur.ActivationDate(), *pur.ExpirationDate(), pur.ID())
	if isNew {
		return uc.subscriptionRepo.Create(ctx, sub)
	}
	return uc.subscriptionRepo.Update(ctx, sub)
}

// sendCredentials mails the portal handoff. Delivery failures do not
// undo the activation.
func (uc *ActivatePlanUseCase) sendCredentials(usr *user.User, activation *ActivatePlanResult) {
	if uc.emailSender == nil {
		return
	}
	err := uc.emailSender.SendCredentialsEmail(usr.Email(), usr.FullName(),
		activation.Credentials.Username, activation.Credentials.Password,
		activation.Credentials.PortalURL)
	if err != nil {
		uc.logger.Warnw("credentials email failed",
			"user_id", usr.ID(),
			"error", err,
		)
	}
}
