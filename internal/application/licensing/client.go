// Package licensing defines the application-side contract with the
// external license platform. The HTTP implementation lives in
// infrastructure; use cases depend only on these interfaces.
package licensing

import (
	"context"
	"strings"
)

// Plan is a catalog entry as the license platform reports it.
type Plan struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Licenses    int     `json:"licenses"`
}

// IsFree classifies a plan as free. A zero price is free; the name
// check also catches catalog entries whose price field is unset.
func (p Plan) IsFree() bool {
	if p.Price == 0 {
		return true
	}
	name := strings.ToLower(p.Name)
	return strings.Contains(name, "gratuito") || strings.Contains(name, "free")
}

// IsPremium classifies team/premium/annual plans, excluding the
// add-on license products whose names also mention those words.
func (p Plan) IsPremium() bool {
	name := strings.ToLower(p.Name)
	if strings.Contains(name, "licencia") || strings.Contains(name, "adicional") {
		return false
	}
	return strings.Contains(name, "equipo") ||
		strings.Contains(name, "premium") ||
		strings.Contains(name, "anual")
}

// CreateSubscriptionRequest is the provisioning payload for one user
// on one plan.
type CreateSubscriptionRequest struct {
	PlanID         uint
	Email          string
	Password       string
	FirstName      string
	LastName       string
	Phone          string
	IdentityNumber string
	IsNewClient    bool
}

// CreateSubscriptionResult is what a successful provisioning returns.
type CreateSubscriptionResult struct {
	ClientID *int
	UserID   *int
	Licenses int
}

// IdentityCheck is the verdict on whether an identity number can be
// used for a new registration.
type IdentityCheck struct {
	Allowed           bool
	AlreadyRegistered bool
	// Retryable marks verdicts the platform could not settle; the
	// caller should ask the user to try later rather than deny.
	Retryable bool
}

// Client talks to the license platform.
type Client interface {
	// ListPlans returns the current catalog.
	ListPlans(ctx context.Context) ([]Plan, error)
	// GetPlan resolves one plan by ID from the catalog.
	GetPlan(ctx context.Context, planID uint) (*Plan, error)
	// CreateSubscription provisions the user on the platform. Errors
	// carry provider text that ClassifyProviderError understands.
	CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*CreateSubscriptionResult, error)
	// ValidateIdentity checks an identity number against the platform
	// registry before registration.
	ValidateIdentity(ctx context.Context, identityNumber string) (*IdentityCheck, error)
}
