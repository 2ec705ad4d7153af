package valueobjects

import "fmt"

// PaymentStatus represents the lifecycle state of a payment record.
type PaymentStatus struct {
	value string
}

const (
	paymentStatusPending   = "pending"
	paymentStatusCompleted = "completed"
	paymentStatusFailed    = "failed"
	paymentStatusCancelled = "cancelled"
	paymentStatusRefunded  = "refunded"
)

var validPaymentStatuses = map[string]bool{
	paymentStatusPending:   true,
	paymentStatusCompleted: true,
	paymentStatusFailed:    true,
	paymentStatusCancelled: true,
	paymentStatusRefunded:  true,
}

func NewPaymentStatus(value string) (PaymentStatus, error) {
	if !validPaymentStatuses[value] {
		return PaymentStatus{}, fmt.Errorf("invalid payment status: %s", value)
	}
	return PaymentStatus{value: value}, nil
}

func PaymentStatusPending() PaymentStatus { return PaymentStatus{value: paymentStatusPending} }
func PaymentStatusCompleted() PaymentStatus { return PaymentStatus{value: paymentStatusCompleted} }
func PaymentStatusFailed() PaymentStatus { return PaymentStatus{value: paymentStatusFailed} }
func PaymentStatusCancelled() PaymentStatus { return PaymentStatus{value: paymentStatusCancelled} }
func PaymentStatusRefunded() PaymentStatus { return PaymentStatus{value: paymentStatusRefunded} }

func (s PaymentStatus) String() string { return s.value }

func (s PaymentStatus) IsPending() bool { return s.value == paymentStatusPending }
func (s PaymentStatus) IsCompleted() bool { return s.value == paymentStatusCompleted }
func (s PaymentStatus) IsFailed() bool { return s.value == paymentStatusFailed }

// CanTransitionTo enforces the forward-only payment lifecycle.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s.value {
	case paymentStatusPending:
		return target.value == paymentStatusCompleted ||
			target.value == paymentStatusFailed ||
			target.value == paymentStatusCancelled
	case paymentStatusCompleted:
		return target.value == paymentStatusRefunded
	default:
		return false
	}
}
