package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlanPurchaseModel is the gorm mapping for the purchase ledger.
//
// FreeSlotUserID enforces one free plan per user: the mapper sets it
// to the owning user ID while the purchase is a free-category one in
// any non-failed state, and NULL otherwise. The unique index then
// rejects a second live free grant even under concurrent activations,
// which MySQL cannot express as a partial unique index directly.
type PlanPurchaseModel struct {
	ID             uint   `gorm:"primarykey"`
	UserID         uint   `gorm:"not null;index"`
	ExternalPlanID uint   `gorm:"not null;index"`
	PlanName       string `gorm:"size:255;not null"`
	Category       string `gorm:"size:20;not null;index"`
	AmountInCents  int64  `gorm:"not null;default:0"`
	Currency       string `gorm:"size:3;not null;default:'MXN'"`
	Licenses       int    `gorm:"not null;default:1"`
	Status         string `gorm:"size:20;not null;index"`
	PaymentID      *uint  `gorm:"index"`
	FreeSlotUserID *uint  `gorm:"uniqueIndex"`

	PurchaseDate   time.Time  `gorm:"not null"`
	ActivationDate *time.Time
	ExpirationDate *time.Time `gorm:"index"`
	Metadata       datatypes.JSON

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (PlanPurchaseModel) TableName() string {
	return "plan_purchases"
}
