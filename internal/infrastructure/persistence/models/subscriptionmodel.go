package models

import (
	"time"

	"gorm.io/gorm"
)

// SubscriptionModel is the one-row-per-user plan summary.
type SubscriptionModel struct {
	ID                uint   `gorm:"primarykey"`
	UserID            uint   `gorm:"uniqueIndex;not null"`
	ExternalPlanID    uint   `gorm:"not null"`
	PlanName          string `gorm:"size:255"`
	PlanCategory      string `gorm:"size:20"`
	AmountInCents     int64  `gorm:"not null;default:0"`
	Currency          string `gorm:"size:3;not null;default:'MXN'"`
	Status            string `gorm:"size:20;not null;index"`
	StartDate         time.Time
	EndDate           time.Time `gorm:"index"`
	CurrentPurchaseID *uint

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}
