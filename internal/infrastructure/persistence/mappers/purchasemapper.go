package mappers

import (
	"encoding/json"

	"gorm.io/datatypes"

	"marketplace/internal/domain/purchase"
	vo "marketplace/internal/domain/purchase/valueobjects"
	sharedvo "marketplace/internal/domain/shared/valueobjects"
	"marketplace/internal/infrastructure/persistence/models"
)

// PurchaseMapper converts between the plan purchase aggregate and its
// gorm model, maintaining the free-slot column that backs the
// one-free-plan-per-user unique index.
type PurchaseMapper struct{}

func NewPurchaseMapper() *PurchaseMapper {
	return &PurchaseMapper{}
}

func (m *PurchaseMapper) ToModel(p *purchase.PlanPurchase) *models.PlanPurchaseModel {
	metadata := datatypes.JSON("{}")
	if raw, err := json.Marshal(p.Metadata()); err == nil {
		metadata = datatypes.JSON(raw)
	}

	var freeSlot *uint
	if p.Category().IsFree() && p.Status().String() != "failed" {
		userID := p.UserID()
		freeSlot = &userID
	}

	return &models.PlanPurchaseModel{
		ID:             p.ID(),
		UserID:         p.UserID(),
		ExternalPlanID: p.ExternalPlanID(),
		PlanName:       p.PlanName(),
		Category:       p.Category().String(),
		AmountInCents:  p.Amount().AmountInCents(),
		Currency:       p.Amount().Currency(),
		Licenses:       p.Licenses(),
		Status:         p.Status().String(),
		PaymentID:      p.PaymentID(),
		FreeSlotUserID: freeSlot,
		PurchaseDate:   p.PurchaseDate(),
		ActivationDate: p.ActivationDate(),
		ExpirationDate: p.ExpirationDate(),
		Metadata:       metadata,
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}
}

func (m *PurchaseMapper) ToDomain(model *models.PlanPurchaseModel) (*purchase.PlanPurchase, error) {
	category, err := vo.NewPlanCategory(model.Category)
	if err != nil {
		return nil, err
	}
	status, err := vo.NewPurchaseStatus(model.Status)
	if err != nil {
		return nil, err
	}

	var metadata map[string]any
	if len(model.Metadata) > 0 {
		_ = json.Unmarshal(model.Metadata, &metadata)
	}

	return purchase.ReconstructPurchase(purchase.ReconstructPurchaseParams{
		ID:             model.ID,
		UserID:         model.UserID,
		ExternalPlanID: model.ExternalPlanID,
		PlanName:       model.PlanName,
		Category:       category,
		Amount:         sharedvo.NewMoney(model.AmountInCents, model.Currency),
		Licenses:       model.Licenses,
		Status:         status,
		PaymentID:      model.PaymentID,
		PurchaseDate:   model.PurchaseDate,
		ActivationDate: model.ActivationDate,
		ExpirationDate: model.ExpirationDate,
		Metadata:       metadata,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}), nil
}

func (m *PurchaseMapper) ToDomainList(list []*models.PlanPurchaseModel) ([]*purchase.PlanPurchase, error) {
	purchases := make([]*purchase.PlanPurchase, 0, len(list))
	for _, model := range list {
		p, err := m.ToDomain(model)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, nil
}
