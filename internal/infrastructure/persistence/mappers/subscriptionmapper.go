package mappers

import (
	sharedvo "marketplace/internal/domain/shared/valueobjects"
	"marketplace/internal/domain/subscription"
	"marketplace/internal/infrastructure/persistence/models"
)

// SubscriptionMapper converts between the subscription summary and
// its gorm model.
type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) ToModel(s *subscription.Subscription) *models.SubscriptionModel {
	return &models.SubscriptionModel{
		ID:                s.ID(),
		UserID:            s.UserID(),
		ExternalPlanID:    s.ExternalPlanID(),
		PlanName:          s.PlanName(),
		PlanCategory:      s.PlanCategory(),
		AmountInCents:     s.Amount().AmountInCents(),
		Currency:          s.Amount().Currency(),
		Status:            s.Status(),
		StartDate:         s.StartDate(),
		EndDate:           s.EndDate(),
		CurrentPurchaseID: s.CurrentPurchaseID(),
		CreatedAt:         s.CreatedAt(),
		UpdatedAt:         s.UpdatedAt(),
	}
}

func (m *SubscriptionMapper) ToDomain(model *models.SubscriptionModel) *subscription.Subscription {
	return subscription.ReconstructSubscription(subscription.ReconstructSubscriptionParams{
		ID:                model.ID,
		UserID:            model.UserID,
		ExternalPlanID:    model.ExternalPlanID,
		PlanName:          model.PlanName,
		PlanCategory:      model.PlanCategory,
		Amount:            sharedvo.NewMoney(model.AmountInCents, model.Currency),
		Status:            model.Status,
		StartDate:         model.StartDate,
		EndDate:           model.EndDate,
		CurrentPurchaseID: model.CurrentPurchaseID,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	})
}
