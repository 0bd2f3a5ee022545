package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates all tables owned by this package.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&tripModel{},
		&bookingModel{},
		&agentLogModel{},
	)
}
