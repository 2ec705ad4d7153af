// Package paymentgateway defines the application-side contract with
// the checkout provider.
package paymentgateway

import "context"

// PreferenceRequest describes one checkout to create.
type PreferenceRequest struct {
	Title             string
	Description       string
	Amount            float64
	Currency          string
	Quantity          int
	ExternalReference string
	PayerEmail        string
	SuccessURL        string
	FailureURL        string
	PendingURL        string
}

// Preference is the created checkout session.
type Preference struct {
	ID        string
	InitPoint string
}

// PaymentInfo is a payment as the provider reports it.
type PaymentInfo struct {
	ID                string
	Status            string
	StatusDetail      string
	ExternalReference string
	Amount            float64
	Currency          string
	PayerEmail        string
}

// Approved reports whether the provider settled the payment. An
// approved status with funds not yet accredited (pending_capture,
// partially_refunded) must not activate anything.
func (p PaymentInfo) Approved() bool {
	return p.Status == "approved" && p.StatusDetail == "accredited"
}

// Gateway creates checkouts and fetches payment state.
type Gateway interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
	// GetPayment returns nil, nil when the provider does not know the
	// payment yet; webhook verification retries in that case.
	GetPayment(ctx context.Context, paymentID string) (*PaymentInfo, error)
}
