package database

import (
	"fmt"

	"eastlens/server/internal/models"
)

// RunMigrations creates the schema. Every statement is idempotent so it is
// safe on every start.
func (d *Database) RunMigrations() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			record_type TEXT NOT NULL,
			address TEXT,
			suburb TEXT,
			postcode TEXT,
			price REAL NOT NULL DEFAULT 0,
			area_sqm REAL,
			bedrooms INTEGER,
			bathrooms INTEGER,
			parking INTEGER,
			property_type TEXT,
			sale_date TEXT,
			source TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create properties table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS districts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create districts table: %v", err)
	}

	// No foreign key constraint so districts can be replaced wholesale
	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS district_suburbs (
			district_id INTEGER,
			suburb TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (district_id, suburb)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create district_suburbs table: %v", err)
	}

	for _, stmt := range []string{
		"CREATE INDEX IF NOT EXISTS idx_properties_record_type ON properties(record_type);",
		"CREATE INDEX IF NOT EXISTS idx_properties_postcode ON properties(postcode);",
		"CREATE INDEX IF NOT EXISTS idx_properties_sale_date ON properties(sale_date);",
	} {
		if _, err := d.db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

// SeedDistricts inserts the given districts when the table is empty.
func (d *Database) SeedDistricts(defaults map[string][]string) error {
	var count int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM districts").Scan(&count); err != nil {
		return fmt.Errorf("failed to count districts: %v", err)
	}
	if count > 0 {
		return nil
	}

	for name, suburbs := range defaults {
		district := models.District{Name: name, Suburbs: suburbs}
		if err := d.UpdateDistrict(district); err != nil {
			return fmt.Errorf("failed to seed district %s: %w", name, err)
		}
	}
	return nil
}
