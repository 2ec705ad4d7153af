package purchase

import (
	"errors"
	"time"

	vo "marketplace/internal/domain/purchase/valueobjects"
	sharedvo "marketplace/internal/domain/shared/valueobjects"
	"marketplace/internal/shared/biztime"
)

// DefaultDurationDays is the access window granted by an activation.
// Every plan, free or paid, expires 365 days after activation.
const DefaultDurationDays = 365

var (
	ErrInvalidUserID  = errors.New("invalid user ID")
	ErrInvalidPlanID  = errors.New("invalid plan ID")
	ErrNotActivatable = errors.New("purchase cannot be activated in its current status")
)

// PlanPurchase records one grant of a catalog plan to a user, from
// purchase through activation to expiration.
type PlanPurchase struct {
	id             uint
	userID         uint
	externalPlanID uint
	planName       string
	category       vo.PlanCategory
	amount         sharedvo.Money
	licenses       int
	status         vo.PurchaseStatus
	paymentID      *uint
	purchaseDate   time.Time
	activationDate *time.Time
	expirationDate *time.Time
	metadata       map[string]any
	createdAt      time.Time
	updatedAt      time.Time
}

func NewPlanPurchase(userID, externalPlanID uint, planName string, category vo.PlanCategory, amount sharedvo.Money, licenses int) (*PlanPurchase, error) {
	if userID == 0 {
		return nil, ErrInvalidUserID
	}
	if externalPlanID == 0 {
		return nil, ErrInvalidPlanID
	}
	if licenses < 1 {
		licenses = 1
	}
	now := biztime.NowUTC()
	return &PlanPurchase{
		userID:         userID,
		externalPlanID: externalPlanID,
		planName:       planName,
		category:       category,
		amount:         amount,
		licenses:       licenses,
		status:         vo.PurchasePending(),
		purchaseDate:   now,
		metadata:       make(map[string]any),
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructPurchaseParams carries persisted state back into the aggregate.
type ReconstructPurchaseParams struct {
	ID             uint
	UserID         uint
	ExternalPlanID uint
	PlanName       string
	Category       vo.PlanCategory
	Amount         sharedvo.Money
	Licenses       int
	Status         vo.PurchaseStatus
	PaymentID      *uint
	PurchaseDate   time.Time
	ActivationDate *time.Time
	ExpirationDate *time.Time
	Metadata       map[string]any
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func ReconstructPurchase(params ReconstructPurchaseParams) *PlanPurchase {
	metadata := params.Metadata
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return &PlanPurchase{
		id:             params.ID,
		userID:         params.UserID,
		externalPlanID: params.ExternalPlanID,
		planName:       params.PlanName,
		category:       params.Category,
		amount:         params.Amount,
		licenses:       params.Licenses,
		status:         params.Status,
		paymentID:      params.PaymentID,
		purchaseDate:   params.PurchaseDate,
		activationDate: params.ActivationDate,
		expirationDate: params.ExpirationDate,
		metadata:       metadata,
		createdAt:      params.CreatedAt,
		updatedAt:      params.UpdatedAt,
	}
}

func (p *PlanPurchase) ID() uint { return p.id }
func (p *PlanPurchase) UserID() uint { return p.userID }
func (p *PlanPurchase) ExternalPlanID() uint { return p.externalPlanID }
func (p *PlanPurchase) PlanName() string { return p.planName }
func (p *PlanPurchase) Category() vo.PlanCategory { return p.category }
func (p *PlanPurchase) Amount() sharedvo.Money { return p.amount }
func (p *PlanPurchase) Licenses() int { return p.licenses }
func (p *PlanPurchase) Status() vo.PurchaseStatus { return p.status }
func (p *PlanPurchase) PaymentID() *uint { return p.paymentID }
func (p *PlanPurchase) PurchaseDate() time.Time { return p.purchaseDate }
func (p *PlanPurchase) ActivationDate() *time.Time { return p.activationDate }
func (p *PlanPurchase) ExpirationDate() *time.Time { return p.expirationDate }
func (p *PlanPurchase) Metadata() map[string]any { return p.metadata }
func (p *PlanPurchase) CreatedAt() time.Time { return p.createdAt }
func (p *PlanPurchase) UpdatedAt() time.Time { return p.updatedAt }

func (p *PlanPurchase) SetID(id uint) { p.id = id }

func (p *PlanPurchase) AttachPayment(paymentID uint) {
	p.paymentID = &paymentID
	p.updatedAt = biztime.NowUTC()
}

func (p *PlanPurchase) SetMetadata(key string, value any) {
	if p.metadata == nil {
		p.metadata = make(map[string]any)
	}
	p.metadata[key] = value
	p.updatedAt = biztime.NowUTC()
}

// Activate transitions the purchase to active and stamps the access
// window. Only pending purchases can be activated.
func (p *PlanPurchase) Activate(durationDays int) error {
	if !p.status.IsPending() {
		return ErrNotActivatable
	}
	if durationDays <= 0 {
		durationDays = DefaultDurationDays
	}
	now := biztime.NowUTC()
	expiration := now.AddDate(0, 0, durationDays)
	p.status = vo.PurchaseActive()
	p.activationDate = &now
	p.expirationDate = &expiration
	p.updatedAt = now
	return nil
}

func (p *PlanPurchase) Cancel() {
	p.status = vo.PurchaseCancelled()
	p.updatedAt = biztime.NowUTC()
}

func (p *PlanPurchase) MarkFailed() {
	p.status = vo.PurchaseFailed()
	p.updatedAt = biztime.NowUTC()
}

// ExpireIfDue flips an active purchase whose window has closed to
// expired. It returns true when the flip happened so callers can
// persist the observed transition.
func (p *PlanPurchase) ExpireIfDue(now time.Time) bool {
	if !p.status.IsActive() {
		return false
	}
	if p.expirationDate == nil || now.Before(*p.expirationDate) {
		return false
	}
	p.status = vo.PurchaseExpired()
	p.updatedAt = biztime.ToUTC(now)
	return true
}

// IsActive reports whether the purchase currently grants access.
func (p *PlanPurchase) IsActive(now time.Time) bool {
	if !p.status.IsActive() {
		return false
	}
	return p.expirationDate == nil || now.Before(*p.expirationDate)
}
