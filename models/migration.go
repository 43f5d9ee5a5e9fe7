package models

import "gorm.io/gorm"

// MigrateAll brings the schema up to date. Called once at startup after the
// database connection is established.
func MigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&Company{},
		&Customer{},
		&Job{},
		&Document{},
		&LineItem{},
	)
}
