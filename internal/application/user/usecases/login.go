package usecases

import (
	"context"

	"marketplace/internal/domain/user"
	apperrors "marketplace/internal/shared/errors"
	"marketplace/internal/shared/logger"
)

// LoginCommand authenticates one account.
type LoginCommand struct {
	Email    string
	Password string
}

// LoginResult is the session handoff.
type LoginResult struct {
	UserID        uint   `json:"user_id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
	Token         string `json:"token"`
}

// LoginUseCase checks credentials and mints a session token.
type LoginUseCase struct {
	userRepo user.Repository
	hasher   passwordHasher
	tokens   tokenIssuer
	logger   logger.Interface
}

func NewLoginUseCase(userRepo user.Repository, hasher passwordHasher, tokens tokenIssuer, log logger.Interface) *LoginUseCase {
	return &LoginUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		logger:   log,
	}
}

func (uc *LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	usr, err := uc.userRepo.FindByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, err
	}
	if usr == nil || !uc.hasher.Compare(usr.PasswordHash(), cmd.Password) {
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}

	token, err := uc.tokens.GenerateToken(usr.ID(), usr.Email(), usr.Role())
	if err != nil {
		return nil, err
	}

	uc.logger.Debugw("user logged in", "user_id", usr.ID())
	return &LoginResult{
		UserID:        usr.ID(),
		Email:         usr.Email(),
		Role:          usr.Role(),
		EmailVerified: usr.EmailVerified(),
		Token:         token,
	}, nil
}
