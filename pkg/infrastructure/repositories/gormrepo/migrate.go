package gormrepo

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates or updates the planning tables. Duplicate production rows
// left by older schemas are collapsed onto their lowest id first, so the
// (production_date, item_id) unique index can be built.
func Migrate(db *gorm.DB) error {
	if db.Migrator().HasTable(&ProductionRecord{}) {
		err := db.Exec(`DELETE FROM productions WHERE id NOT IN (
			SELECT keep_id FROM (
				SELECT MIN(id) AS keep_id FROM productions GROUP BY production_date, item_id
			) AS keep
		)`).Error
		if err != nil {
			return fmt.Errorf("dedupe productions: %w", err)
		}
	}
	if err := db.AutoMigrate(AllRecords()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
