package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the schema for every persisted entity.
// Production deployments run real migrations; this covers dev and tests.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&businessModel{},
		&customerModel{},
		&bookingModel{},
		&idempotencyKeyModel{},
		&callModel{},
		&oauthCredentialModel{},
	)
}
