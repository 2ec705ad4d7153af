package mappers

import (
	"encoding/json"

	"gorm.io/datatypes"

	"marketplace/internal/domain/payment"
	vo "marketplace/internal/domain/payment/valueobjects"
	sharedvo "marketplace/internal/domain/shared/valueobjects"
	"marketplace/internal/infrastructure/persistence/models"
)

// PaymentMapper converts between the payment aggregate and its gorm model.
type PaymentMapper struct{}

func NewPaymentMapper() *PaymentMapper {
	return &PaymentMapper{}
}

func (m *PaymentMapper) ToModel(p *payment.Payment) *models.PaymentModel {
	var providerPaymentID *string
	if id := p.ProviderPaymentID(); id != "" {
		providerPaymentID = &id
	}

	metadata := datatypes.JSON("{}")
	if raw, err := json.Marshal(p.Metadata()); err == nil {
		metadata = datatypes.JSON(raw)
	}

	return &models.PaymentModel{
		ID:                p.ID(),
		UserID:            p.UserID(),
		Provider:          p.Provider().String(),
		AmountInCents:     p.Amount().AmountInCents(),
		Currency:          p.Amount().Currency(),
		Status:            p.Status().String(),
		ProviderPaymentID: providerPaymentID,
		ExternalReference: p.ExternalReference(),
		Description:       p.Description(),
		Metadata:          metadata,
		CreatedAt:         p.CreatedAt(),
		UpdatedAt:         p.UpdatedAt(),
	}
}

func (m *PaymentMapper) ToDomain(model *models.PaymentModel) (*payment.Payment, error) {
	provider, err := vo.NewPaymentProvider(model.Provider)
	if err != nil {
		return nil, err
	}
	status, err := vo.NewPaymentStatus(model.Status)
	if err != nil {
		return nil, err
	}

	var metadata map[string]any
	if len(model.Metadata) > 0 {
		_ = json.Unmarshal(model.Metadata, &metadata)
	}

	providerPaymentID := ""
	if model.ProviderPaymentID != nil {
		providerPaymentID = *model.ProviderPaymentID
	}

	return payment.ReconstructPayment(payment.ReconstructPaymentParams{
		ID:                model.ID,
		UserID:            model.UserID,
		Provider:          provider,
		Amount:            sharedvo.NewMoney(model.AmountInCents, model.Currency),
		Status:            status,
		ProviderPaymentID: providerPaymentID,
		ExternalReference: model.ExternalReference,
		Description:       model.Description,
		Metadata:          metadata,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}), nil
}

func (m *PaymentMapper) ToDomainList(list []*models.PaymentModel) ([]*payment.Payment, error) {
	payments := make([]*payment.Payment, 0, len(list))
	for _, model := range list {
		p, err := m.ToDomain(model)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}
