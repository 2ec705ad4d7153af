package usecases

import (
	"context"

	"marketplace/internal/application/licensing"
	"marketplace/internal/application/payment/paymentgateway"
	"marketplace/internal/domain/user"
	"marketplace/internal/shared/biztime"
	"marketplace/internal/shared/config"
	apperrors "marketplace/internal/shared/errors"
	"marketplace/internal/shared/logger"
)

// CreatePreferenceCommand requests a checkout link for one plan.
type CreatePreferenceCommand struct {
	UserID uint
	PlanID uint
}

// CreatePreferenceResult carries the checkout handoff.
type CreatePreferenceResult struct {
	PreferenceID      string `json:"preference_id"`
	InitPoint         string `json:"init_point"`
	ExternalReference string `json:"external_reference"`
}

// CreatePreferenceUseCase builds a provider checkout for a paid plan.
// The external reference minted here is what the webhook later uses
// to correlate the settled payment back to user and plan.
type CreatePreferenceUseCase struct {
	userRepo        user.Repository
	licensingClient licensing.Client
	gateway         paymentgateway.Gateway
	serverBaseURL   string
	testBuyerEmail  string
	logger          logger.Interface
}

func NewCreatePreferenceUseCase(
	userRepo user.Repository,
	licensingClient licensing.Client,
	gateway paymentgateway.Gateway,
	serverCfg *config.ServerConfig,
	mpCfg *config.MercadoPagoConfig,
	log logger.Interface,
) *CreatePreferenceUseCase {
	testBuyer := ""
	if mpCfg.Sandbox {
		testBuyer = mpCfg.TestBuyerEmail
	}
	return &CreatePreferenceUseCase{
		userRepo:        userRepo,
		licensingClient: licensingClient,
		gateway:         gateway,
		serverBaseURL:   serverCfg.BaseURL,
		testBuyerEmail:  testBuyer,
		logger:          log,
	}
}

func (uc *CreatePreferenceUseCase) Execute(ctx context.Context, cmd CreatePreferenceCommand) (*CreatePreferenceResult, error) {
	usr, err := uc.userRepo.FindByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	plan, err := uc.licensingClient.GetPlan(ctx, cmd.PlanID)
	if err != nil {
		return nil, err
	}
	if plan.IsFree() {
		return nil, apperrors.NewValidationError("free plans are activated directly, not purchased")
	}
	if plan.Price <= 0 {
		return nil, apperrors.NewValidationError("plan has no purchasable price")
	}

	reference := BuildReference(plan.ID, usr.ID(), biztime.NowUTC())

	payerEmail := usr.Email()
	if uc.testBuyerEmail != "" {
		payerEmail = uc.testBuyerEmail
	}

	pref, err := uc.gateway.CreatePreference(ctx, paymentgateway.PreferenceRequest{
		Title:             plan.Name,
		Description:       plan.Description,
		Amount:            plan.Price,
		Currency:          plan.Currency,
		Quantity:          1,
		ExternalReference: reference,
		PayerEmail:        payerEmail,
		SuccessURL:        uc.serverBaseURL + "/api/v1/payments/success",
		FailureURL:        uc.serverBaseURL + "/api/v1/payments/failure",
		PendingURL:        uc.serverBaseURL + "/api/v1/payments/pending",
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("checkout preference created",
		"user_id", usr.ID(),
		"plan_id", plan.ID,
		"preference_id", pref.ID,
		"external_reference", reference,
	)
	return &CreatePreferenceResult{
		PreferenceID:      pref.ID,
		InitPoint:         pref.InitPoint,
		ExternalReference: reference,
	}, nil
}
