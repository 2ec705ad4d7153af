package usecases

import (
	"context"
	"fmt"

	"marketplace/internal/application/licensing"
	"marketplace/internal/domain/user"
	"marketplace/internal/infrastructure/email"
	apperrors "marketplace/internal/shared/errors"
	"marketplace/internal/shared/logger"
)

type passwordHasher interface {
	Hash(password string) (string, error)
	Compare(hashed, password string) bool
}

type tokenIssuer interface {
	GenerateToken(userID uint, email, role string) (string, error)
}

// RegisterUserCommand creates one marketplace account.
type RegisterUserCommand struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	Phone          string
	IdentityNumber string
}

// RegisterUserResult is the created account plus its session token.
type RegisterUserResult struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// RegisterUserUseCase creates an account after clearing the identity
// number against the license platform. An identity already bound to a
// platform subscription is rejected up front rather than failing at
// first activation.
type RegisterUserUseCase struct {
	userRepo        user.Repository
	licensingClient licensing.Client
	hasher          passwordHasher
	tokens          tokenIssuer
	emailSender     email.Sender
	serverBaseURL   string
	logger          logger.Interface
}

func NewRegisterUserUseCase(
	userRepo user.Repository,
	licensingClient licensing.Client,
	hasher passwordHasher,
	tokens tokenIssuer,
	emailSender email.Sender,
	serverBaseURL string,
	log logger.Interface,
) *RegisterUserUseCase {
	return &RegisterUserUseCase{
		userRepo:        userRepo,
		licensingClient: licensingClient,
		hasher:          hasher,
		tokens:          tokens,
		emailSender:     emailSender,
		serverBaseURL:   serverBaseURL,
		logger:          log,
	}
}

func (uc *RegisterUserUseCase) Execute(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	exists, err := uc.userRepo.ExistsByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflictError("email already registered")
	}

	if cmd.IdentityNumber != "" {
		check, err := uc.licensingClient.ValidateIdentity(ctx, cmd.IdentityNumber)
		if err != nil {
			return nil, apperrors.NewExternalAPIError("identity validation unavailable, try again later", err)
		}
		switch {
		case check.AlreadyRegistered:
			return nil, apperrors.NewConflictError("identity number already registered on the platform")
		case check.Retryable:
			return nil, apperrors.NewExternalAPIError("identity validation unsettled, try again later", nil)
		}
	}

	hash, err := uc.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, err
	}

	usr, err := user.NewUser(cmd.Email, hash, cmd.FirstName, cmd.LastName)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if cmd.IdentityNumber != "" {
		usr.SetIdentityNumber(cmd.IdentityNumber)
	}
	if cmd.Phone != "" {
		usr.SetPhoneNumber(cmd.Phone)
	}

	token, err := usr.GenerateVerificationToken()
	if err != nil {
		return nil, err
	}

	if err := uc.userRepo.Create(ctx, usr); err != nil {
		return nil, err
	}

	uc.sendVerification(usr, token)

	sessionToken, err := uc.tokens.GenerateToken(usr.ID(), usr.Email(), usr.Role())
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("user registered", "user_id", usr.ID(), "email", usr.Email())
	return &RegisterUserResult{
		UserID: usr.ID(),
		Email:  usr.Email(),
		Token:  sessionToken,
	}, nil
}

func (uc *RegisterUserUseCase) sendVerification(usr *user.User, token string) {
	if uc.emailSender == nil {
		return
	}
	verifyURL := fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", uc.serverBaseURL, token)
	if err := uc.emailSender.SendVerificationEmail(usr.Email(), usr.FullName(), verifyURL); err != nil {
		uc.logger.Warnw("verification email failed", "user_id", usr.ID(), "error", err)
	}
}
