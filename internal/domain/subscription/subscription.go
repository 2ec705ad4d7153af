package subscription

import (
	"errors"
	"time"

	sharedvo "marketplace/internal/domain/shared/valueobjects"
	"marketplace/internal/shared/biztime"
)

var ErrInvalidUserID = errors.New("invalid user ID")

// Subscription is the one-row-per-user summary of the user's current
// plan. Activations upsert it; the purchase ledger keeps the history.
type Subscription struct {
	id                uint
	userID            uint
	externalPlanID    uint
	planName          string
	planCategory      string
	amount            sharedvo.Money
	status            string
	startDate         time.Time
	endDate           time.Time
	currentPurchaseID *uint
	createdAt         time.Time
	updatedAt         time.Time
}

const (
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

func NewSubscription(userID uint) (*Subscription, error) {
	if userID == 0 {
		return nil, ErrInvalidUserID
	}
	now := biztime.NowUTC()
	return &Subscription{
		userID:    userID,
		status:    StatusActive,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructSubscriptionParams carries persisted state back into the aggregate.
type ReconstructSubscriptionParams struct {
	ID                uint
	UserID            uint
	ExternalPlanID    uint
	PlanName          string
	PlanCategory      string
	Amount            sharedvo.Money
	Status            string
	StartDate         time.Time
	EndDate           time.Time
	CurrentPurchaseID *uint
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func ReconstructSubscription(params ReconstructSubscriptionParams) *Subscription {
	return &Subscription{
		id:                params.ID,
		userID:            params.UserID,
		externalPlanID:    params.ExternalPlanID,
		planName:          params.PlanName,
		planCategory:      params.PlanCategory,
		amount:            params.Amount,
		status:            params.Status,
		startDate:         params.StartDate,
		endDate:           params.EndDate,
		currentPurchaseID: params.CurrentPurchaseID,
		createdAt:         params.CreatedAt,
		updatedAt:         params.UpdatedAt,
	}
}

func (s *Subscription) ID() uint { return s.id }
func (s *Subscription) UserID() uint { return s.userID }
func (s *Subscription) ExternalPlanID() uint { return s.externalPlanID }
func (s *Subscription) PlanName() string { return s.planName }
func (s *Subscription) PlanCategory() string { return s.planCategory }
func (s *Subscription) Amount() sharedvo.Money { return s.amount }
func (s *Subscription) Status() string { return s.status }
func (s *Subscription) StartDate() time.Time { return s.startDate }
func (s *Subscription) EndDate() time.Time { return s.endDate }
func (s *Subscription) CurrentPurchaseID() *uint { return s.currentPurchaseID }
func (s *Subscription) CreatedAt() time.Time { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time { return s.updatedAt }

func (s *Subscription) SetID(id uint) { s.id = id }

// ApplyTerm replaces the summary with the terms of a freshly
// activated purchase.
func (s *Subscription) ApplyTerm(externalPlanID uint, planName, planCategory string, amount sharedvo.Money, start, end time.Time, purchaseID uint) {
	s.externalPlanID = externalPlanID
	s.planName = planName
	s.planCategory = planCategory
	s.amount = amount
	s.status = StatusActive
	s.startDate = biztime.ToUTC(start)
	s.endDate = biztime.ToUTC(end)
	s.currentPurchaseID = &purchaseID
	s.updatedAt = biztime.NowUTC()
}

func (s *Subscription) IsActive(now time.Time) bool {
	return s.status == StatusActive && now.Before(s.endDate)
}
