package database

import (
	"path/filepath"
	"testing"

	"eastlens/server/internal/models"

	"github.com/stretchr/testify/assert"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	assert.NoError(t, err)
	assert.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })
	return db
}

func insertRecord(t *testing.T, db *Database, recordType, postcode, suburb string, price float64, saleDate string) {
	t.Helper()
	var date interface{}
	if saleDate != "" {
		date = saleDate
	}
	_, err := db.GetDB().Exec(`
		INSERT INTO properties (record_type, postcode, suburb, price, sale_date)
		VALUES (?, ?, ?, ?, ?)
	`, recordType, postcode, suburb, price, date)
	assert.NoError(t, err)
}

func TestGetRecordsFilters(t *testing.T) {
	db := openTestDB(t)

	insertRecord(t, db, models.RecordTypeSale, "2026", "Bondi", 1500000, "2024-06-01")
	insertRecord(t, db, models.RecordTypeSale, "2031", "Coogee", 1100000, "2023-03-01")
	insertRecord(t, db, models.RecordTypeListing, "2026", "Bondi", 1800000, "")

	sales, err := db.GetRecords(RecordFilter{RecordType: models.RecordTypeSale})
	assert.NoError(t, err)
	assert.Len(t, sales, 2)
	// Newest sale first.
	assert.Equal(t, "2026", sales[0].Postcode)
	assert.NotNil(t, sales[0].SaleDate)
	assert.Equal(t, 2024, sales[0].SaleDate.Year())

	bondi, err := db.GetRecords(RecordFilter{Suburb: "bondi"})
	assert.NoError(t, err)
	assert.Len(t, bondi, 2)

	listings, err := db.GetRecords(RecordFilter{RecordType: models.RecordTypeListing, Postcode: "2026"})
	assert.NoError(t, err)
	assert.Len(t, listings, 1)
	assert.Nil(t, listings[0].SaleDate)
}

func TestGetDatasets(t *testing.T) {
	db := openTestDB(t)

	insertRecord(t, db, models.RecordTypeSale, "2026", "Bondi", 1500000, "2024-06-01")
	insertRecord(t, db, models.RecordTypeListing, "2026", "Bondi", 1800000, "")

	current, historical, err := db.GetDatasets()
	assert.NoError(t, err)
	assert.Len(t, current, 1)
	assert.Len(t, historical, 1)
}

func TestClearRecords(t *testing.T) {
	db := openTestDB(t)

	insertRecord(t, db, models.RecordTypeSale, "2026", "Bondi", 1500000, "2024-06-01")
	insertRecord(t, db, models.RecordTypeListing, "2026", "Bondi", 1800000, "")

	assert.NoError(t, db.ClearRecords(models.RecordTypeListing))

	count, err := db.CountRecords(models.RecordTypeListing)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = db.CountRecords(models.RecordTypeSale)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDistrictCRUD(t *testing.T) {
	db := openTestDB(t)

	district := models.District{
		Name:    "Beaches",
		Suburbs: []string{"Bondi", "Bronte", "Coogee"},
	}
	assert.NoError(t, db.UpdateDistrict(district))

	got, err := db.GetDistrictByName("Beaches")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.ElementsMatch(t, district.Suburbs, got.Suburbs)

	// Update replaces the suburb list wholesale.
	district.Suburbs = []string{"Bondi", "Maroubra"}
	assert.NoError(t, db.UpdateDistrict(district))
	suburbs, err := db.GetSuburbsInDistrict("Beaches")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"Bondi", "Maroubra"}, suburbs)

	districts, err := db.GetDistricts()
	assert.NoError(t, err)
	assert.Len(t, districts, 1)

	assert.NoError(t, db.DeleteDistrict("Beaches"))
	gone, err := db.GetDistrictByName("Beaches")
	assert.NoError(t, err)
	assert.Nil(t, gone)

	err = db.DeleteDistrict("Beaches")
	assert.Error(t, err)
}

func TestSeedDistrictsOnlyWhenEmpty(t *testing.T) {
	db := openTestDB(t)

	defaults := map[string][]string{"Beaches": {"Bondi"}}
	assert.NoError(t, db.SeedDistricts(defaults))

	// A second seed run must not duplicate or overwrite.
	assert.NoError(t, db.UpdateDistrict(models.District{Name: "Beaches", Suburbs: []string{"Bondi", "Bronte"}}))
	assert.NoError(t, db.SeedDistricts(defaults))

	suburbs, err := db.GetSuburbsInDistrict("Beaches")
	assert.NoError(t, err)
	assert.Len(t, suburbs, 2)
}
