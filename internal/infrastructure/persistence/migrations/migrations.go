// Package migrations applies the schema via gorm auto-migration.
package migrations

import (
	"gorm.io/gorm"

	"marketplace/internal/infrastructure/persistence/models"
	"marketplace/internal/shared/logger"
)

// Run migrates all tables.
func Run(db *gorm.DB, log logger.Interface) error {
	log.Infow("running database migrations")

	err := db.AutoMigrate(
		&models.UserModel{},
		&models.PaymentModel{},
		&models.PlanPurchaseModel{},
		&models.SubscriptionModel{},
	)
	if err != nil {
		return err
	}

	log.Infow("database migrations completed")
	return nil
}
