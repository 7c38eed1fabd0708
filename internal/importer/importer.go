package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"eastlens/server/config"
	"eastlens/server/internal/area"
	"eastlens/server/internal/models"
	"eastlens/server/internal/queue"

	"github.com/sirupsen/logrus"
)

// Importer loads the two CSV datasets, normalizes their rows into property
// records and enqueues them in batches for persistence. Bad rows are logged
// and skipped, never fatal.
type Importer struct {
	logger          *logrus.Logger
	extractor       *area.Extractor
	queue           *queue.RecordQueue
	batchSize       int
	historicalYears int
	now             func() time.Time
}

// NewImporter creates an importer. historicalYears > 0 drops sales older
// than that many years at load time.
func NewImporter(q *queue.RecordQueue, batchSize, historicalYears int, logger *logrus.Logger) *Importer {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Importer{
		logger:          logger,
		extractor:       area.NewExtractor(logger),
		queue:           q,
		batchSize:       batchSize,
		historicalYears: historicalYears,
		now:             time.Now,
	}
}

// ImportHistorical reads the sales CSV and enqueues its records. Returns
// the number of records enqueued.
func (i *Importer) ImportHistorical(path string) (int, error) {
	records, err := i.ReadHistorical(path)
	if err != nil {
		return 0, err
	}
	return len(records), i.Enqueue(records)
}

// ImportCurrent reads the listings CSV and enqueues its records.
func (i *Importer) ImportCurrent(path string) (int, error) {
	records, err := i.ReadCurrent(path)
	if err != nil {
		return 0, err
	}
	return len(records), i.Enqueue(records)
}

// ReadHistorical parses the sales CSV. Expected headers: "Contract date",
// "Purchase price", "Property post code", "Property locality" and
// optionally "Area". Rows outside the Eastern Suburbs postcodes or without
// a parseable contract date are skipped.
func (i *Importer) ReadHistorical(path string) ([]models.PropertyRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open historical CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read historical CSV header: %w", err)
	}
	cols := columnIndex(header)

	required := []string{"contract date", "purchase price", "property post code", "property locality"}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("historical CSV missing column %q", name)
		}
	}

	var cutoff time.Time
	if i.historicalYears > 0 {
		cutoff = i.now().AddDate(-i.historicalYears, 0, 0)
	}

	var records []models.PropertyRecord
	var skipped int
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			i.logger.WithError(err).WithField("line", line).Warn("Skipping malformed CSV row")
			skipped++
			continue
		}

		saleDate, err := parseDate(field(row, cols, "contract date"))
		if err != nil {
			skipped++
			continue
		}
		if !cutoff.IsZero() && saleDate.Before(cutoff) {
			skipped++
			continue
		}

		postcode := normalizePostcode(field(row, cols, "property post code"))
		if !config.IsEasternPostcode(postcode) {
			skipped++
			continue
		}

		record := models.PropertyRecord{
			RecordType: models.RecordTypeSale,
			Suburb:     strings.TrimSpace(field(row, cols, "property locality")),
			Postcode:   postcode,
			Price:      parsePrice(field(row, cols, "purchase price")),
			SaleDate:   &saleDate,
			Address:    strings.TrimSpace(field(row, cols, "property street address")),
			Source:     "historical_csv",
		}
		record.AreaSqm = i.parseArea(field(row, cols, "area"), "")
		records = append(records, record)
	}

	i.logger.WithFields(logrus.Fields{
		"path":    path,
		"records": len(records),
		"skipped": skipped,
	}).Info("Parsed historical CSV")
	return records, nil
}

// ReadCurrent parses the listings CSV. Expected headers: "price",
// "postcode", "suburb" and optionally "Area", "address", "bedrooms",
// "bathrooms", "parking", "property_type" and "description". When the Area
// column is missing or unusable, the area is extracted from the
// description text.
func (i *Importer) ReadCurrent(path string) ([]models.PropertyRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open current CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read current CSV header: %w", err)
	}
	cols := columnIndex(header)

	for _, name := range []string{"price", "postcode", "suburb"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("current CSV missing column %q", name)
		}
	}

	var records []models.PropertyRecord
	var skipped int
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			i.logger.WithError(err).WithField("line", line).Warn("Skipping malformed CSV row")
			skipped++
			continue
		}

		postcode := normalizePostcode(field(row, cols, "postcode"))
		if !config.IsEasternPostcode(postcode) {
			skipped++
			continue
		}

		record := models.PropertyRecord{
			RecordType:   models.RecordTypeListing,
			Address:      strings.TrimSpace(field(row, cols, "address")),
			Suburb:       strings.TrimSpace(field(row, cols, "suburb")),
			Postcode:     postcode,
			Price:        parsePrice(field(row, cols, "price")),
			PropertyType: strings.TrimSpace(field(row, cols, "property_type")),
			Bedrooms:     parseCount(field(row, cols, "bedrooms")),
			Bathrooms:    parseCount(field(row, cols, "bathrooms")),
			Parking:      parseCount(field(row, cols, "parking")),
			Source:       "current_csv",
		}
		record.AreaSqm = i.parseArea(field(row, cols, "area"), field(row, cols, "description"))
		records = append(records, record)
	}

	i.logger.WithFields(logrus.Fields{
		"path":    path,
		"records": len(records),
		"skipped": skipped,
	}).Info("Parsed current CSV")
	return records, nil
}

// Enqueue pushes records in batches, waiting when the queue is full.
func (i *Importer) Enqueue(records []models.PropertyRecord) error {
	for start := 0; start < len(records); start += i.batchSize {
		end := start + i.batchSize
		if end > len(records) {
			end = len(records)
		}

		batch := make([]*models.PropertyRecord, 0, end-start)
		for j := start; j < end; j++ {
			batch = append(batch, &records[j])
		}

		for {
			err := i.queue.Push(batch)
			if err == nil {
				break
			}
			if err == queue.ErrQueueFull {
				time.Sleep(100 * time.Millisecond)
				continue
			}
			return fmt.Errorf("failed to enqueue batch: %w", err)
		}
	}
	return nil
}

// parseArea reads a numeric area value, falling back to extracting one from
// free text such as a listing description.
func (i *Importer) parseArea(value, description string) *float64 {
	value = strings.TrimSpace(value)
	if value != "" {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64); err == nil && v > 0 {
			return &v
		}
		if v, ok := i.extractor.Extract(value); ok && v > 0 {
			return &v
		}
	}
	if description != "" {
		if v, ok := i.extractor.Extract(description); ok && v > 0 {
			return &v
		}
	}
	return nil
}

// columnIndex maps lowercased, trimmed header names to their positions.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for idx, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = idx
	}
	return cols
}

func field(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// normalizePostcode trims a postcode cell and strips the trailing ".0" that
// spreadsheet round-tripping leaves on numeric columns.
func normalizePostcode(value string) string {
	value = strings.TrimSpace(value)
	value = strings.TrimSuffix(value, ".0")
	return value
}

// parsePrice reads a price cell, tolerating currency symbols and thousands
// separators. Unparseable cells become 0 and are filtered out downstream.
func parsePrice(value string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(value))
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseCount(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v < 0 {
		return nil
	}
	n := int(v)
	return &n
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", "02/01/2006", "2/1/2006", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", value)
}
