package analysis

import (
	"os"
	"sort"
	"strconv"
	"time"

	"eastlens/server/internal/models"

	"github.com/sirupsen/logrus"
)

const defaultRecentWindowYears = 2

// Engine compares a set of current listings against historical sales. It is
// pure computation: no I/O, no clock reads, and identical inputs always
// produce an identical report.
type Engine struct {
	logger            *logrus.Logger
	recentWindowYears int
}

// NewEngine creates a comparison engine. recentWindowYears bounds the
// "recent sales" partition; values <= 0 fall back to the default of 2.
func NewEngine(logger *logrus.Logger, recentWindowYears int) *Engine {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if recentWindowYears <= 0 {
		recentWindowYears = defaultRecentWindowYears
	}
	return &Engine{logger: logger, recentWindowYears: recentWindowYears}
}

// Compare builds the full comparison report for the two datasets. Records
// without a positive price are excluded from every aggregate; records
// without a positive area are excluded from price-per-sqm aggregates only.
func (e *Engine) Compare(current, historical []models.PropertyRecord) *models.ComparisonReport {
	report := &models.ComparisonReport{
		ByPostcode: []models.PostcodeComparison{},
	}

	report.Overall = comparePair(current, historical)

	recent := e.recentSales(historical)
	report.RecentVsCurrent = comparePair(current, recent)

	report.ByPostcode = e.compareByPostcode(current, historical)
	report.Insights = buildInsights(report.ByPostcode)

	e.logger.WithFields(logrus.Fields{
		"current_records":    len(current),
		"historical_records": len(historical),
		"recent_records":     len(recent),
		"postcodes":          len(report.ByPostcode),
	}).Info("Built comparison report")

	return report
}

// recentSales returns the historical records whose sale date falls within
// the window ending at the newest sale date in the dataset. The cutoff is
// relative to the data, not the wall clock, so an old dataset still yields a
// meaningful recent partition.
func (e *Engine) recentSales(historical []models.PropertyRecord) []models.PropertyRecord {
	var newest time.Time
	for i := range historical {
		d := historical[i].SaleDate
		if d != nil && d.After(newest) {
			newest = *d
		}
	}
	if newest.IsZero() {
		return nil
	}

	cutoff := newest.AddDate(-e.recentWindowYears, 0, 0)
	var recent []models.PropertyRecord
	for i := range historical {
		d := historical[i].SaleDate
		if d != nil && !d.Before(cutoff) {
			recent = append(recent, historical[i])
		}
	}
	return recent
}

// compareByPostcode builds one row per postcode present on both sides with
// at least one valid-price record each. Rows are ordered by ascending
// numeric postcode. The suburb label is taken from the current side when it
// has one, falling back to the historical side.
func (e *Engine) compareByPostcode(current, historical []models.PropertyRecord) []models.PostcodeComparison {
	curGroups := groupByPostcode(current)
	histGroups := groupByPostcode(historical)

	postcodes := make([]string, 0, len(curGroups))
	for pc := range curGroups {
		if _, ok := histGroups[pc]; ok {
			postcodes = append(postcodes, pc)
		}
	}
	sort.Slice(postcodes, func(i, j int) bool {
		a, aerr := strconv.Atoi(postcodes[i])
		b, berr := strconv.Atoi(postcodes[j])
		if aerr != nil || berr != nil {
			return postcodes[i] < postcodes[j]
		}
		return a < b
	})

	rows := make([]models.PostcodeComparison, 0, len(postcodes))
	for _, pc := range postcodes {
		cur := curGroups[pc]
		hist := histGroups[pc]
		row := models.PostcodeComparison{
			Postcode:        pc,
			Suburb:          suburbLabel(cur, hist),
			HistoricalCount: len(hist),
			CurrentCount:    len(cur),
			Price:           compareValues(prices(cur), prices(hist)),
			PricePerSqm:     compareValues(pricesPerSqm(cur), pricesPerSqm(hist)),
		}
		rows = append(rows, row)
	}
	return rows
}

// buildInsights tallies postcodes whose current median price sits above or
// below the historical median. Exact ties are ignored.
func buildInsights(rows []models.PostcodeComparison) models.MarketInsights {
	var insights models.MarketInsights
	for _, row := range rows {
		if !row.Price.Available {
			continue
		}
		switch {
		case row.Price.CurrentMedian > row.Price.HistoricalMedian:
			insights.Overvalued++
		case row.Price.CurrentMedian < row.Price.HistoricalMedian:
			insights.Undervalued++
		}
	}
	return insights
}

// comparePair builds the price and price-per-sqm comparisons for two full
// datasets.
func comparePair(current, historical []models.PropertyRecord) models.MetricPair {
	return models.MetricPair{
		Price:       compareValues(prices(current), prices(historical)),
		PricePerSqm: compareValues(pricesPerSqm(current), pricesPerSqm(historical)),
	}
}

// compareValues compares one metric between the two sides. An unavailable
// comparison is returned when either side is empty after filtering or the
// historical aggregate is zero; no NaN or Inf can escape.
func compareValues(current, historical []float64) models.MetricComparison {
	if len(current) == 0 || len(historical) == 0 {
		return models.MetricComparison{}
	}

	cmp := models.MetricComparison{
		HistoricalMedian: Median(historical),
		HistoricalMean:   Mean(historical),
		CurrentMedian:    Median(current),
		CurrentMean:      Mean(current),
	}

	medianDiff, ok := PercentDiff(cmp.CurrentMedian, cmp.HistoricalMedian)
	if !ok {
		return models.MetricComparison{}
	}
	meanDiff, ok := PercentDiff(cmp.CurrentMean, cmp.HistoricalMean)
	if !ok {
		return models.MetricComparison{}
	}

	cmp.Available = true
	cmp.MedianDiffPct = medianDiff
	cmp.MeanDiffPct = meanDiff
	return cmp
}

// groupByPostcode buckets valid-price records by postcode.
func groupByPostcode(records []models.PropertyRecord) map[string][]models.PropertyRecord {
	groups := make(map[string][]models.PropertyRecord)
	for i := range records {
		r := &records[i]
		if r.Postcode == "" || !r.HasValidPrice() {
			continue
		}
		groups[r.Postcode] = append(groups[r.Postcode], records[i])
	}
	return groups
}

func prices(records []models.PropertyRecord) []float64 {
	var vals []float64
	for i := range records {
		if records[i].HasValidPrice() {
			vals = append(vals, records[i].Price)
		}
	}
	return vals
}

func pricesPerSqm(records []models.PropertyRecord) []float64 {
	var vals []float64
	for i := range records {
		if v, ok := records[i].PricePerSqm(); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

func suburbLabel(current, historical []models.PropertyRecord) string {
	for i := range current {
		if current[i].Suburb != "" {
			return current[i].Suburb
		}
	}
	for i := range historical {
		if historical[i].Suburb != "" {
			return historical[i].Suburb
		}
	}
	return ""
}
