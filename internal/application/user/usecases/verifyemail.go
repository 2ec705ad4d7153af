package usecases

import (
	"context"
	"errors"

	"marketplace/internal/domain/user"
	apperrors "marketplace/internal/shared/errors"
	"marketplace/internal/shared/logger"
)

// VerifyEmailCommand confirms an account's email by token.
type VerifyEmailCommand struct {
	Token string
}

// VerifyEmailUseCase settles the email verification token.
type VerifyEmailUseCase struct {
	userRepo user.Repository
	logger   logger.Interface
}

func NewVerifyEmailUseCase(userRepo user.Repository, log logger.Interface) *VerifyEmailUseCase {
	return &VerifyEmailUseCase{
		userRepo: userRepo,
		logger:   log,
	}
}

func (uc *VerifyEmailUseCase) Execute(ctx context.Context, cmd VerifyEmailCommand) error {
	if cmd.Token == "" {
		return apperrors.NewValidationError("verification token is required")
	}

	usr, err := uc.userRepo.FindByVerificationToken(ctx, cmd.Token)
	if err != nil {
		return err
	}

	if err := usr.VerifyEmail(cmd.Token); err != nil {
		switch {
		case errors.Is(err, user.ErrEmailAlreadyVerified):
			return nil
		case errors.Is(err, user.ErrTokenExpired):
			return apperrors.NewValidationError("verification token expired")
		default:
			return apperrors.NewValidationError("invalid verification token")
		}
	}

	if err := uc.userRepo.Update(ctx, usr); err != nil {
		return err
	}

	uc.logger.Infow("email verified", "user_id", usr.ID())
	return nil
}
