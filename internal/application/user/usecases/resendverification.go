package usecases

import (
	"context"
	"fmt"

	"marketplace/internal/domain/user"
	"marketplace/internal/infrastructure/email"
	apperrors "marketplace/internal/shared/errors"
	"marketplace/internal/shared/logger"
)

// ResendVerificationUseCase issues a fresh verification token and mails
// it out. The previous token stops working once the new one is stored.
type ResendVerificationUseCase struct {
	userRepo      user.Repository
	emailSender   email.Sender
	serverBaseURL string
	logger        logger.Interface
}

func NewResendVerificationUseCase(
	userRepo user.Repository,
	emailSender email.Sender,
	serverBaseURL string,
	log logger.Interface,
) *ResendVerificationUseCase {
	return &ResendVerificationUseCase{
		userRepo:      userRepo,
		emailSender:   emailSender,
		serverBaseURL: serverBaseURL,
		logger:        log,
	}
}

func (uc *ResendVerificationUseCase) Execute(ctx context.Context, userID uint) error {
	usr, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if usr.EmailVerified() {
		return apperrors.NewValidationError("email already verified")
	}

	token, err := usr.GenerateVerificationToken()
	if err != nil {
		return err
	}
	if err := uc.userRepo.Update(ctx, usr); err != nil {
		return err
	}

	if uc.emailSender != nil {
		verifyURL := fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", uc.serverBaseURL, token)
		if err := uc.emailSender.SendVerificationEmail(usr.Email(), usr.FullName(), verifyURL); err != nil {
			uc.logger.Warnw("verification email failed", "user_id", usr.ID(), "error", err)
			return apperrors.NewExternalAPIError("could not send verification email", err)
		}
	}

	uc.logger.Infow("verification email resent", "user_id", usr.ID())
	return nil
}
