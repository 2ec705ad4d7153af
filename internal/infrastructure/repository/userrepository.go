package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"marketplace/internal/domain/user"
	"marketplace/internal/infrastructure/persistence/mappers"
	"marketplace/internal/infrastructure/persistence/models"
	"marketplace/internal/shared/db"
	apperrors "marketplace/internal/shared/errors"
)

// UserRepository is the gorm-backed user.Repository.
type UserRepository struct {
	db     *gorm.DB
	mapper *mappers.UserMapper
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{
		db:     database,
		mapper: mappers.NewUserMapper(),
	}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	tx := db.GetTxFromContext(ctx, r.db)
	model := r.mapper.ToModel(u)
	if err := tx.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("email already registered")
		}
		return err
	}
	u.SetID(model.ID)
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	tx := db.GetTxFromContext(ctx, r.db)
	model := r.mapper.ToModel(u)
	return tx.WithContext(ctx).Save(model).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	var model models.UserModel
	if err := tx.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, err
	}
	return r.mapper.ToDomain(&model), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	var model models.UserModel
	err := tx.WithContext(ctx).Where("email = ?", email).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToDomain(&model), nil
}

func (r *UserRepository) FindByVerificationToken(ctx context.Context, token string) (*user.User, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	var model models.UserModel
	err := tx.WithContext(ctx).Where("email_verification_token = ?", token).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("verification token not found")
		}
		return nil, err
	}
	return r.mapper.ToDomain(&model), nil
}

func (r *UserRepository) FindRecentByRole(ctx context.Context, role string, cutoff time.Time) ([]*user.User, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	var list []*models.UserModel
	err := tx.WithContext(ctx).
		Where("role = ? AND created_at >= ?", role, cutoff).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToDomainList(list), nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	var count int64
	err := tx.WithContext(ctx).Model(&models.UserModel{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}
