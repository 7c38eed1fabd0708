package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"eastlens/server/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

// RecordFilter narrows GetRecords results. Empty fields match everything.
type RecordFilter struct {
	RecordType string
	Postcode   string
	Suburb     string
	Suburbs    []string
}

// GetRecords returns property records matching the filter, newest sales
// first.
func (d *Database) GetRecords(filter RecordFilter) ([]models.PropertyRecord, error) {
	query := `
        SELECT
            id,
            record_type,
            COALESCE(address, '') as address,
            COALESCE(suburb, '') as suburb,
            COALESCE(postcode, '') as postcode,
            price,
            area_sqm,
            bedrooms,
            bathrooms,
            parking,
            COALESCE(property_type, '') as property_type,
            sale_date,
            COALESCE(source, '') as source,
            COALESCE(created_at, CURRENT_TIMESTAMP) as created_at
        FROM properties
        WHERE 1=1
    `
	var args []interface{}

	if filter.RecordType != "" {
		query += " AND record_type = ?"
		args = append(args, filter.RecordType)
	}
	if filter.Postcode != "" {
		query += " AND postcode = ?"
		args = append(args, filter.Postcode)
	}
	if filter.Suburb != "" {
		query += " AND LOWER(suburb) = LOWER(?)"
		args = append(args, filter.Suburb)
	}
	if len(filter.Suburbs) > 0 {
		placeholders := make([]string, len(filter.Suburbs))
		for i, s := range filter.Suburbs {
			placeholders[i] = "LOWER(?)"
			args = append(args, s)
		}
		query += " AND LOWER(suburb) IN (" + strings.Join(placeholders, ", ") + ")"
	}

	query += " ORDER BY sale_date DESC, id ASC"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.PropertyRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetDatasets returns the current listings and historical sales in one
// call, the shape the comparison engine wants.
func (d *Database) GetDatasets() (current, historical []models.PropertyRecord, err error) {
	current, err = d.GetRecords(RecordFilter{RecordType: models.RecordTypeListing})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load listings: %w", err)
	}
	historical, err = d.GetRecords(RecordFilter{RecordType: models.RecordTypeSale})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load sales: %w", err)
	}
	return current, historical, nil
}

// CountRecords returns the number of rows of one record type.
func (d *Database) CountRecords(recordType string) (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM properties WHERE record_type = ?", recordType).Scan(&count)
	return count, err
}

// ClearRecords deletes every row of one record type. Used before a
// reimport so stale rows don't accumulate.
func (d *Database) ClearRecords(recordType string) error {
	_, err := d.db.Exec("DELETE FROM properties WHERE record_type = ?", recordType)
	if err != nil {
		return fmt.Errorf("failed to clear %s records: %w", recordType, err)
	}
	return nil
}

func scanRecord(rows *sql.Rows) (models.PropertyRecord, error) {
	var p models.PropertyRecord
	var areaSqm sql.NullFloat64
	var bedrooms, bathrooms, parking sql.NullInt64
	var saleDate sql.NullString
	var createdAt sql.NullString

	err := rows.Scan(
		&p.ID,
		&p.RecordType,
		&p.Address,
		&p.Suburb,
		&p.Postcode,
		&p.Price,
		&areaSqm,
		&bedrooms,
		&bathrooms,
		&parking,
		&p.PropertyType,
		&saleDate,
		&p.Source,
		&createdAt,
	)
	if err != nil {
		return p, err
	}

	if areaSqm.Valid {
		v := areaSqm.Float64
		p.AreaSqm = &v
	}
	if bedrooms.Valid {
		v := int(bedrooms.Int64)
		p.Bedrooms = &v
	}
	if bathrooms.Valid {
		v := int(bathrooms.Int64)
		p.Bathrooms = &v
	}
	if parking.Valid {
		v := int(parking.Int64)
		p.Parking = &v
	}
	if saleDate.Valid && saleDate.String != "" {
		if t, err := parseDate(saleDate.String); err == nil {
			p.SaleDate = &t
		}
	}
	if createdAt.Valid && createdAt.String != "" {
		if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
			p.CreatedAt = t
		}
	}
	return p, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", value)
}

// GetDistricts returns all districts with their suburbs
func (d *Database) GetDistricts() ([]models.District, error) {
	rows, err := d.db.Query(`
		SELECT dist.id, dist.name, GROUP_CONCAT(ds.suburb, ',') as suburbs
		FROM districts dist
		LEFT JOIN district_suburbs ds ON dist.id = ds.district_id
		GROUP BY dist.id, dist.name
		ORDER BY dist.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query districts: %v", err)
	}
	defer rows.Close()

	var districts []models.District
	for rows.Next() {
		var district models.District
		var suburbsStr sql.NullString
		if err := rows.Scan(&district.ID, &district.Name, &suburbsStr); err != nil {
			return nil, fmt.Errorf("failed to scan district: %v", err)
		}
		if suburbsStr.Valid && suburbsStr.String != "" {
			district.Suburbs = strings.Split(suburbsStr.String, ",")
		} else {
			district.Suburbs = []string{}
		}
		districts = append(districts, district)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating districts: %v", err)
	}

	return districts, nil
}

// GetDistrictByName returns a specific district by name, nil when absent
func (d *Database) GetDistrictByName(name string) (*models.District, error) {
	var district models.District
	var suburbsStr sql.NullString

	err := d.db.QueryRow(`
		SELECT dist.id, dist.name, GROUP_CONCAT(ds.suburb) as suburbs
		FROM districts dist
		LEFT JOIN district_suburbs ds ON dist.id = ds.district_id
		WHERE dist.name = ?
		GROUP BY dist.id, dist.name
	`, name).Scan(&district.ID, &district.Name, &suburbsStr)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query district: %v", err)
	}

	if suburbsStr.Valid && suburbsStr.String != "" {
		district.Suburbs = strings.Split(suburbsStr.String, ",")
	} else {
		district.Suburbs = []string{}
	}

	return &district, nil
}

// UpdateDistrict updates or creates a district and its suburb list
func (d *Database) UpdateDistrict(district models.District) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	var existingID int64
	err = tx.QueryRow("SELECT id FROM districts WHERE name = ?", district.Name).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing district: %v", err)
	}

	var id int64
	if err == sql.ErrNoRows {
		result, err := tx.Exec("INSERT INTO districts (name) VALUES (?)", district.Name)
		if err != nil {
			return fmt.Errorf("failed to insert district: %v", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get district ID: %v", err)
		}
	} else {
		id = existingID
	}

	_, err = tx.Exec("DELETE FROM district_suburbs WHERE district_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete existing suburbs: %v", err)
	}

	for _, suburb := range district.Suburbs {
		_, err = tx.Exec(`
			INSERT INTO district_suburbs (district_id, suburb)
			VALUES (?, ?)
		`, id, suburb)
		if err != nil {
			return fmt.Errorf("failed to insert suburb: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// DeleteDistrict deletes a district and its suburb list
func (d *Database) DeleteDistrict(name string) error {
	result, err := d.db.Exec("DELETE FROM districts WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete district: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("district not found: %s", name)
	}

	return nil
}

// GetSuburbsInDistrict returns the suburbs grouped under a district
func (d *Database) GetSuburbsInDistrict(name string) ([]string, error) {
	rows, err := d.db.Query(`
		SELECT ds.suburb
		FROM district_suburbs ds
		JOIN districts dist ON ds.district_id = dist.id
		WHERE dist.name = ?
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query suburbs: %v", err)
	}
	defer rows.Close()

	var suburbs []string
	for rows.Next() {
		var suburb string
		if err := rows.Scan(&suburb); err != nil {
			return nil, fmt.Errorf("failed to scan suburb: %v", err)
		}
		suburbs = append(suburbs, suburb)
	}

	return suburbs, nil
}
