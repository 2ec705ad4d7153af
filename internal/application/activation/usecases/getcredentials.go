package usecases

import (
	"context"

	"marketplace/internal/domain/user"
	apperrors "marketplace/internal/shared/errors"
)

// GetCredentialsQuery asks for a user's stored portal handoff.
type GetCredentialsQuery struct {
	UserID uint
}

// GetCredentialsUseCase returns the portal credentials issued on
// first provisioning. There is no second copy; if the user was never
// provisioned there is nothing to show.
type GetCredentialsUseCase struct {
	userRepo  user.Repository
	portalURL string
}

func NewGetCredentialsUseCase(userRepo user.Repository, portalURL string) *GetCredentialsUseCase {
	return &GetCredentialsUseCase{
		userRepo:  userRepo,
		portalURL: portalURL,
	}
}

func (uc *GetCredentialsUseCase) Execute(ctx context.Context, query GetCredentialsQuery) (*Credentials, error) {
	usr, err := uc.userRepo.FindByID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	if usr.IsNewClient() {
		return nil, apperrors.NewNotFoundError("user has no portal credentials yet")
	}
	return &Credentials{
		Username:  usr.ExternalUsername(),
		Password:  usr.ExternalPassword(),
		PortalURL: uc.portalURL,
	}, nil
}
