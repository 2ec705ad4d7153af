package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"marketplace/internal/domain/subscription"
	"marketplace/internal/infrastructure/persistence/mappers"
	"marketplace/internal/infrastructure/persistence/models"
	"marketplace/internal/shared/db"
)

// SubscriptionRepository is the gorm-backed subscription.Repository.
type SubscriptionRepository struct {
	db     *gorm.DB
	mapper *mappers.SubscriptionMapper
}

var _ subscription.Repository = (*SubscriptionRepository)(nil)

func NewSubscriptionRepository(database *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{
		db:     database,
		mapper: mappers.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	tx := db.GetTxFromContext(ctx, r.db)
	model := r.mapper.ToModel(s)
	if err := tx.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	s.SetID(model.ID)
	return nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	tx := db.GetTxFromContext(ctx, r.db)
	return tx.WithContext(ctx).Save(r.mapper.ToModel(s)).Error
}

func (r *SubscriptionRepository) FindByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	var model models.SubscriptionModel
	err := tx.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToDomain(&model), nil
}
