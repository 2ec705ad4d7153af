package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentModel is the gorm mapping for payment records. The provider
// payment ID carries a unique index so replayed webhooks fail loudly
// at the database even when two handlers race.
type PaymentModel struct {
	ID                uint    `gorm:"primarykey"`
	UserID            uint    `gorm:"not null;index"`
	Provider          string  `gorm:"size:20;not null"`
	AmountInCents     int64   `gorm:"not null;default:0"`
	Currency          string  `gorm:"size:3;not null;default:'MXN'"`
	Status            string  `gorm:"size:20;not null;index"`
	ProviderPaymentID *string `gorm:"size:64;uniqueIndex"`
	ExternalReference string  `gorm:"size:255;index"`
	Description       string  `gorm:"size:500"`
	Metadata          datatypes.JSON

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (PaymentModel) TableName() string {
	return "payments"
}
