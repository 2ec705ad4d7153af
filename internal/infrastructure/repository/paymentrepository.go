package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"marketplace/internal/domain/payment"
	"marketplace/internal/infrastructure/persistence/mappers"
	"marketplace/internal/infrastructure/persistence/models"
	"marketplace/internal/shared/db"
	apperrors "marketplace/internal/shared/errors"
)

// PaymentRepository is the gorm-backed payment.Repository.
type PaymentRepository struct {
	db     *gorm.DB
	mapper *mappers.PaymentMapper
}

var _ payment.Repository = (*PaymentRepository)(nil)

func NewPaymentRepository(database *gorm.DB) *PaymentRepository {
	return &PaymentRepository{
		db:     database,
		mapper: mappers.NewPaymentMapper(),
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	tx := db.GetTxFromContext(ctx, r.db)
	model := r.mapper.ToModel(p)
	if err := tx.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("payment already recorded",
				p.ProviderPaymentID())
		}
		return err
	}
	p.SetID(model.ID)
	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	tx := db.GetTxFromContext(ctx, r.db)
	return tx.WithContext(ctx).Save(r.mapper.ToModel(p)).Error
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uint) (*payment.Payment, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	var model models.PaymentModel
	if err := tx.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("payment not found")
		}
		return nil, err
	}
	return r.mapper.ToDomain(&model)
}

func (r *PaymentRepository) FindByProviderPaymentID(ctx context.Context, providerPaymentID string) (*payment.Payment, error) {
	if providerPaymentID == "" {
		return nil, nil
	}
	tx := db.GetTxFromContext(ctx, r.db)
	var model models.PaymentModel
	err := tx.WithContext(ctx).
		Where("provider_payment_id = ?", providerPaymentID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToDomain(&model)
}

func (r *PaymentRepository) FindByUserID(ctx context.Context, userID uint) ([]*payment.Payment, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	var list []*models.PaymentModel
	err := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToDomainList(list)
}

func (r *PaymentRepository) FindCompletedSince(ctx context.Context, cutoff time.Time) ([]*payment.Payment, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	var list []*models.PaymentModel
	err := tx.WithContext(ctx).
		Where("status = ? AND created_at >= ?", "completed", cutoff).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToDomainList(list)
}
