package payment

import (
	"errors"
	"time"

	vo "marketplace/internal/domain/payment/valueobjects"
	sharedvo "marketplace/internal/domain/shared/valueobjects"
	"marketplace/internal/shared/biztime"
)

var (
	ErrInvalidUserID           = errors.New("invalid user ID")
	ErrInvalidStatusTransition = errors.New("invalid payment status transition")
)

// Payment is one money movement observed by the marketplace. Records
// from the payment provider carry the provider's payment ID, which is
// the deduplication key for webhook replays; internal grants carry a
// synthetic reference instead.
type Payment struct {
	id                uint
	userID            uint
	provider          vo.PaymentProvider
	amount            sharedvo.Money
	status            vo.PaymentStatus
	providerPaymentID string
	externalReference string
	description       string
	metadata          map[string]any
	createdAt         time.Time
	updatedAt         time.Time
}

func NewPayment(userID uint, provider vo.PaymentProvider, amount sharedvo.Money, providerPaymentID, externalReference, description string) (*Payment, error) {
	if userID == 0 {
		return nil, ErrInvalidUserID
	}
	now := biztime.NowUTC()
	return &Payment{
		userID:            userID,
		provider:          provider,
		amount:            amount,
		status:            vo.PaymentStatusPending(),
		providerPaymentID: providerPaymentID,
		externalReference: externalReference,
		description:       description,
		metadata:          make(map[string]any),
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// ReconstructPaymentParams carries persisted state back into the aggregate.
type ReconstructPaymentParams struct {
	ID                uint
	UserID            uint
	Provider          vo.PaymentProvider
	Amount            sharedvo.Money
	Status            vo.PaymentStatus
	ProviderPaymentID string
	ExternalReference string
	Description       string
	Metadata          map[string]any
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func ReconstructPayment(params ReconstructPaymentParams) *Payment {
	metadata := params.Metadata
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return &Payment{
		id:                params.ID,
		userID:            params.UserID,
		provider:          params.Provider,
		amount:            params.Amount,
		status:            params.Status,
		providerPaymentID: params.ProviderPaymentID,
		externalReference: params.ExternalReference,
		description:       params.Description,
		metadata:          metadata,
		createdAt:         params.CreatedAt,
		updatedAt:         params.UpdatedAt,
	}
}

func (p *Payment) ID() uint { return p.id }
func (p *Payment) UserID() uint { return p.userID }
func (p *Payment) Provider() vo.PaymentProvider { return p.provider }
func (p *Payment) Amount() sharedvo.Money { return p.amount }
func (p *Payment) Status() vo.PaymentStatus { return p.status }
func (p *Payment) ProviderPaymentID() string { return p.providerPaymentID }
func (p *Payment) ExternalReference() string { return p.externalReference }
func (p *Payment) Description() string { return p.description }
func (p *Payment) Metadata() map[string]any { return p.metadata }
func (p *Payment) CreatedAt() time.Time { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time { return p.updatedAt }

func (p *Payment) SetID(id uint) { p.id = id }

func (p *Payment) SetMetadata(key string, value any) {
	if p.metadata == nil {
		p.metadata = make(map[string]any)
	}
	p.metadata[key] = value
	p.updatedAt = biztime.NowUTC()
}

func (p *Payment) MarkAsCompleted() error {
	return p.transitionTo(vo.PaymentStatusCompleted())
}

func (p *Payment) MarkAsFailed() error {
	return p.transitionTo(vo.PaymentStatusFailed())
}

func (p *Payment) MarkAsCancelled() error {
	return p.transitionTo(vo.PaymentStatusCancelled())
}

func (p *Payment) transitionTo(target vo.PaymentStatus) error {
	if !p.status.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	p.status = target
	p.updatedAt = biztime.NowUTC()
	return nil
}
