package models

import (
	"time"

	"gorm.io/gorm"
)

// UserModel is the gorm mapping for marketplace accounts.
type UserModel struct {
	ID           uint   `gorm:"primarykey"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	FirstName    string `gorm:"size:100"`
	LastName     string `gorm:"size:100"`
	Role         string `gorm:"size:20;not null;default:'free';index"`
	Language     string `gorm:"size:10;default:'es'"`

	PhoneNumber   string `gorm:"size:20"`
	PhoneVerified bool   `gorm:"not null;default:false"`

	IdentityNumber string `gorm:"size:20;index"`

	EmailVerified            bool   `gorm:"not null;default:false"`
	EmailVerificationToken   string `gorm:"size:64;index"`
	EmailVerificationExpires *time.Time

	ExternalRegistered bool   `gorm:"not null;default:false"`
	ExternalUsername   string `gorm:"size:255"`
	ExternalPassword   string `gorm:"size:255"`
	ExternalClientID   *int
	ExternalUserID     *int
	ExternalLicenses   int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (UserModel) TableName() string {
	return "users"
}
