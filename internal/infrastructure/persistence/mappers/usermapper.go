package mappers

import (
	"marketplace/internal/domain/user"
	"marketplace/internal/infrastructure/persistence/models"
)

// UserMapper converts between the user aggregate and its gorm model.
type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToModel(u *user.User) *models.UserModel {
	return &models.UserModel{
		ID:                       u.ID(),
		Email:                    u.Email(),
		PasswordHash:             u.PasswordHash(),
		FirstName:                u.FirstName(),
		LastName:                 u.LastName(),
		Role:                     u.Role(),
		Language:                 u.Language(),
		PhoneNumber:              u.PhoneNumber(),
		PhoneVerified:            u.PhoneVerified(),
		IdentityNumber:           u.IdentityNumber(),
		EmailVerified:            u.EmailVerified(),
		EmailVerificationToken:   u.EmailVerificationToken(),
		EmailVerificationExpires: u.EmailVerificationExpires(),
		ExternalRegistered:       u.ExternalRegistered(),
		ExternalUsername:         u.ExternalUsername(),
		ExternalPassword:         u.ExternalPassword(),
		ExternalClientID:         u.ExternalClientID(),
		ExternalUserID:           u.ExternalUserID(),
		ExternalLicenses:         u.ExternalLicenses(),
		CreatedAt:                u.CreatedAt(),
		UpdatedAt:                u.UpdatedAt(),
	}
}

func (m *UserMapper) ToDomain(model *models.UserModel) *user.User {
	return user.ReconstructUser(user.ReconstructUserParams{
		ID:                       model.ID,
		Email:                    model.Email,
		PasswordHash:             model.PasswordHash,
		FirstName:                model.FirstName,
		LastName:                 model.LastName,
		Role:                     model.Role,
		Language:                 model.Language,
		PhoneNumber:              model.PhoneNumber,
		PhoneVerified:            model.PhoneVerified,
		IdentityNumber:           model.IdentityNumber,
		EmailVerified:            model.EmailVerified,
		EmailVerificationToken:   model.EmailVerificationToken,
		EmailVerificationExpires: model.EmailVerificationExpires,
		ExternalRegistered:       model.ExternalRegistered,
		ExternalUsername:         model.ExternalUsername,
		ExternalPassword:         model.ExternalPassword,
		ExternalClientID:         model.ExternalClientID,
		ExternalUserID:           model.ExternalUserID,
		ExternalLicenses:         model.ExternalLicenses,
		CreatedAt:                model.CreatedAt,
		UpdatedAt:                model.UpdatedAt,
	})
}

func (m *UserMapper) ToDomainList(list []*models.UserModel) []*user.User {
	users := make([]*user.User, 0, len(list))
	for _, model := range list {
		users = append(users, m.ToDomain(model))
	}
	return users
}
