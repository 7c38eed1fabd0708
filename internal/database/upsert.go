package database

import (
	"eastlens/server/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaveRecords persists a batch of property records inside the caller's
// transaction. Rows that collide on the primary key are left alone; the
// importer clears a record type before re-enqueueing it.
func SaveRecords(tx *gorm.DB, records []*models.PropertyRecord) error {
	if len(records) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&records).Error
}
