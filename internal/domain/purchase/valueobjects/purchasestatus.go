package valueobjects

import "fmt"

// PurchaseStatus is the lifecycle state of a plan purchase.
type PurchaseStatus struct {
	value string
}

const (
	purchasePending   = "pending"
	purchaseActive    = "active"
	purchaseExpired   = "expired"
	purchaseCancelled = "cancelled"
	purchaseFailed    = "failed"
)

var validPurchaseStatuses = map[string]bool{
	purchasePending:   true,
	purchaseActive:    true,
	purchaseExpired:   true,
	purchaseCancelled: true,
	purchaseFailed:    true,
}

func NewPurchaseStatus(value string) (PurchaseStatus, error) {
	if !validPurchaseStatuses[value] {
		return PurchaseStatus{}, fmt.Errorf("invalid purchase status: %s", value)
	}
	return PurchaseStatus{value: value}, nil
}

func PurchasePending() PurchaseStatus { return PurchaseStatus{value: purchasePending} }
func PurchaseActive() PurchaseStatus { return PurchaseStatus{value: purchaseActive} }
func PurchaseExpired() PurchaseStatus { return PurchaseStatus{value: purchaseExpired} }
func PurchaseCancelled() PurchaseStatus { return PurchaseStatus{value: purchaseCancelled} }
func PurchaseFailed() PurchaseStatus { return PurchaseStatus{value: purchaseFailed} }

func (s PurchaseStatus) String() string { return s.value }

func (s PurchaseStatus) IsActive() bool { return s.value == purchaseActive }
func (s PurchaseStatus) IsExpired() bool { return s.value == purchaseExpired }
func (s PurchaseStatus) IsPending() bool { return s.value == purchasePending }
