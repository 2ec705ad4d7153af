package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"marketplace/internal/domain/purchase"
	"marketplace/internal/infrastructure/persistence/mappers"
	"marketplace/internal/infrastructure/persistence/models"
	"marketplace/internal/shared/biztime"
	"marketplace/internal/shared/db"
	apperrors "marketplace/internal/shared/errors"
	"marketplace/internal/shared/logger"
)

// PurchaseRepository is the gorm-backed purchase.Repository. Reads
// settle overdue purchases: any active row past its expiration date
// is flipped to expired and the flip persisted before it is returned.
type PurchaseRepository struct {
	db     *gorm.DB
	mapper *mappers.PurchaseMapper
	logger logger.Interface
}

var _ purchase.Repository = (*PurchaseRepository)(nil)

func NewPurchaseRepository(database *gorm.DB, log logger.Interface) *PurchaseRepository {
	return &PurchaseRepository{
		db:     database,
		mapper: mappers.NewPurchaseMapper(),
		logger: log,
	}
}

func (r *PurchaseRepository) Create(ctx context.Context, p *purchase.PlanPurchase) error {
	tx := db.GetTxFromContext(ctx, r.db)
	model := r.mapper.ToModel(p)
	if err := tx.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("user already holds a free plan")
		}
		return err
	}
	p.SetID(model.ID)
	return nil
}

func (r *PurchaseRepository) Update(ctx context.Context, p *purchase.PlanPurchase) error {
	tx := db.GetTxFromContext(ctx, r.db)
	return tx.WithContext(ctx).Save(r.mapper.ToModel(p)).Error
}

func (r *PurchaseRepository) FindByID(ctx context.Context, id uint) (*purchase.PlanPurchase, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	var model models.PlanPurchaseModel
	if err := tx.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("purchase not found")
		}
		return nil, err
	}
	p, err := r.mapper.ToDomain(&model)
	if err != nil {
		return nil, err
	}
	r.settleExpiration(ctx, p)
	return p, nil
}

func (r *PurchaseRepository) FindByUserID(ctx context.Context, userID uint) ([]*purchase.PlanPurchase, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	var list []*models.PlanPurchaseModel
	err := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	purchases, err := r.mapper.ToDomainList(list)
	if err != nil {
		return nil, err
	}
	for _, p := range purchases {
		r.settleExpiration(ctx, p)
	}
	return purchases, nil
}

func (r *PurchaseRepository) FindActiveByUserID(ctx context.Context, userID uint) ([]*purchase.PlanPurchase, error) {
	all, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := biztime.NowUTC()
	active := make([]*purchase.PlanPurchase, 0, len(all))
	for _, p := range all {
		if p.IsActive(now) {
			active = append(active, p)
		}
	}
	return active, nil
}

func (r *PurchaseRepository) UserHasFreePurchase(ctx context.Context, userID uint) (bool, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	var count int64
	err := tx.WithContext(ctx).Model(&models.PlanPurchaseModel{}).
		Where("user_id = ? AND category = ? AND status <> ?", userID, "free", "failed").
		Count(&count).Error
	return count > 0, err
}

// settleExpiration persists a lazily observed expiration. A failed
// write only delays the flip until the next read.
func (r *PurchaseRepository) settleExpiration(ctx context.Context, p *purchase.PlanPurchase) {
	if !p.ExpireIfDue(biztime.NowUTC()) {
		return
	}
	if err := r.Update(ctx, p); err != nil {
		r.logger.Warnw("failed to persist purchase expiration",
			"purchase_id", p.ID(),
			"error", err,
		)
	}
}
