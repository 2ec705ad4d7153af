package usecases

import (
	"context"

	"marketplace/internal/domain/user"
	"marketplace/internal/infrastructure/otp"
	apperrors "marketplace/internal/shared/errors"
	"marketplace/internal/shared/logger"
)

// SendPhoneCodeCommand asks for a verification code delivery.
type SendPhoneCodeCommand struct {
	UserID uint
	Phone  string
}

// VerifyPhoneCodeCommand checks a user-entered code.
type VerifyPhoneCodeCommand struct {
	UserID uint
	Code   string
}

// PhoneVerificationUseCase runs the WhatsApp code round-trip. The
// gateway keeps the codes; this side only records the verified flag.
type PhoneVerificationUseCase struct {
	userRepo user.Repository
	sender   otp.Sender
	logger   logger.Interface
}

func NewPhoneVerificationUseCase(userRepo user.Repository, sender otp.Sender, log logger.Interface) *PhoneVerificationUseCase {
	return &PhoneVerificationUseCase{
		userRepo: userRepo,
		sender:   sender,
		logger:   log,
	}
}

func (uc *PhoneVerificationUseCase) SendCode(ctx context.Context, cmd SendPhoneCodeCommand) error {
	usr, err := uc.userRepo.FindByID(ctx, cmd.UserID)
	if err != nil {
		return err
	}

	phone := cmd.Phone
	if phone == "" {
		phone = usr.PhoneNumber()
	}
	if phone == "" {
		return apperrors.NewValidationError("no phone number to verify")
	}

	normalized, err := otp.NormalizePhone(phone)
	if err != nil {
		return apperrors.NewValidationError("invalid phone number", err.Error())
	}

	if err := uc.sender.SendCode(ctx, normalized); err != nil {
		return err
	}

	if normalized != usr.PhoneNumber() {
		usr.SetPhoneNumber(normalized)
		if err := uc.userRepo.Update(ctx, usr); err != nil {
			return err
		}
	}

	uc.logger.Infow("phone code requested", "user_id", usr.ID())
	return nil
}

func (uc *PhoneVerificationUseCase) VerifyCode(ctx context.Context, cmd VerifyPhoneCodeCommand) error {
	usr, err := uc.userRepo.FindByID(ctx, cmd.UserID)
	if err != nil {
		return err
	}
	if usr.PhoneNumber() == "" {
		return apperrors.NewValidationError("no phone number on file")
	}

	valid, err := uc.sender.VerifyCode(ctx, usr.PhoneNumber(), cmd.Code)
	if err != nil {
		return err
	}
	if !valid {
		return apperrors.NewValidationError("verification code is incorrect or expired")
	}

	usr.MarkPhoneVerified()
	if err := uc.userRepo.Update(ctx, usr); err != nil {
		return err
	}

	uc.logger.Infow("phone verified", "user_id", usr.ID())
	return nil
}
