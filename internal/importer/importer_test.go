package importer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"eastlens/server/internal/models"
	"eastlens/server/internal/queue"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadHistorical(t *testing.T) {
	csv := "Contract date,Purchase price,Property post code,Property locality,Area\n" +
		"2024-06-01,1500000,2026,BONDI,150\n" +
		"2024-03-15,\"$2,100,000\",2021.0,PADDINGTON,\n" +
		"2024-01-01,900000,2000,SYDNEY,100\n" + // outside coverage area
		"not-a-date,800000,2026,BONDI,90\n" // unparseable date

	imp := NewImporter(nil, 10, 0, logrus.New())
	records, err := imp.ReadHistorical(writeCSV(t, "sales.csv", csv))

	assert.NoError(t, err)
	assert.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, models.RecordTypeSale, first.RecordType)
	assert.Equal(t, "2026", first.Postcode)
	assert.Equal(t, "BONDI", first.Suburb)
	assert.Equal(t, 1500000.0, first.Price)
	assert.NotNil(t, first.AreaSqm)
	assert.Equal(t, 150.0, *first.AreaSqm)
	assert.NotNil(t, first.SaleDate)
	assert.Equal(t, 2024, first.SaleDate.Year())

	// ".0" suffix from spreadsheet export is stripped, price symbols cleaned.
	second := records[1]
	assert.Equal(t, "2021", second.Postcode)
	assert.Equal(t, 2100000.0, second.Price)
	assert.Nil(t, second.AreaSqm)
}

func TestReadHistoricalAppliesCutoff(t *testing.T) {
	csv := "Contract date,Purchase price,Property post code,Property locality\n" +
		"2024-06-01,1500000,2026,BONDI\n" +
		"2018-06-01,1000000,2026,BONDI\n"

	imp := NewImporter(nil, 10, 5, logrus.New())
	imp.now = func() time.Time {
		return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	records, err := imp.ReadHistorical(writeCSV(t, "sales.csv", csv))
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 2024, records[0].SaleDate.Year())
}

func TestReadHistoricalMissingColumn(t *testing.T) {
	csv := "Purchase price,Property post code\n1500000,2026\n"

	imp := NewImporter(nil, 10, 0, logrus.New())
	_, err := imp.ReadHistorical(writeCSV(t, "sales.csv", csv))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "contract date")
}

func TestReadCurrent(t *testing.T) {
	csv := "price,postcode,suburb,Area,bedrooms,bathrooms,description\n" +
		"1690154,2026,Bondi,150,3,2,\n" +
		"2500000,2028,Double Bay,,4,,\"Elegant home on 0.25 acres\"\n" +
		"1200000,2031,Coogee,,,,no size mentioned\n"

	imp := NewImporter(nil, 10, 0, logrus.New())
	records, err := imp.ReadCurrent(writeCSV(t, "listings.csv", csv))

	assert.NoError(t, err)
	assert.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, models.RecordTypeListing, first.RecordType)
	assert.Nil(t, first.SaleDate)
	assert.NotNil(t, first.AreaSqm)
	assert.Equal(t, 150.0, *first.AreaSqm)
	assert.NotNil(t, first.Bedrooms)
	assert.Equal(t, 3, *first.Bedrooms)
	assert.Nil(t, first.Parking)

	// Area recovered from the description text, converted to sqm.
	second := records[1]
	assert.NotNil(t, second.AreaSqm)
	assert.InDelta(t, 0.25*4046.86, *second.AreaSqm, 1e-6)
	assert.Nil(t, second.Bathrooms)

	// No area anywhere: the record survives with AreaSqm unset.
	assert.Nil(t, records[2].AreaSqm)
}

func TestImportCurrentEnqueuesBatches(t *testing.T) {
	csv := "price,postcode,suburb\n" +
		"1000000,2026,Bondi\n" +
		"1100000,2026,Bondi\n" +
		"1200000,2031,Coogee\n"

	log := logrus.New()
	q := queue.NewRecordQueue(10, log)
	imp := NewImporter(q, 2, 0, log)

	count, err := imp.ImportCurrent(writeCSV(t, "listings.csv", csv))
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	// Batch size 2 over 3 records means two batches queued.
	assert.Equal(t, 2, q.Len())
}
