package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"eastlens/server/internal/models"
)

var reportHeader = []string{
	"postcode",
	"suburb",
	"historical_median_price",
	"historical_mean_price",
	"current_median_price",
	"current_mean_price",
	"median_diff_pct",
	"mean_diff_pct",
	"historical_count",
	"current_count",
}

// WriteReport serializes a comparison report as CSV: one row per postcode
// plus a trailing OVERALL row. Unavailable metrics render as empty cells.
func WriteReport(w io.Writer, report *models.ComparisonReport) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(reportHeader); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, row := range report.ByPostcode {
		record := append(
			[]string{row.Postcode, row.Suburb},
			metricCells(row.Price)...,
		)
		record = append(record,
			strconv.Itoa(row.HistoricalCount),
			strconv.Itoa(row.CurrentCount),
		)
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}

	overall := append([]string{"OVERALL", ""}, metricCells(report.Overall.Price)...)
	overall = append(overall, "", "")
	if err := writer.Write(overall); err != nil {
		return fmt.Errorf("failed to write overall row: %w", err)
	}

	writer.Flush()
	return writer.Error()
}

// WriteReportFile writes the report CSV to path, creating parent
// directories as needed.
func WriteReportFile(path string, report *models.ComparisonReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	return WriteReport(file, report)
}

func metricCells(m models.MetricComparison) []string {
	if !m.Available {
		return []string{"", "", "", "", "", ""}
	}
	return []string{
		formatAmount(m.HistoricalMedian),
		formatAmount(m.HistoricalMean),
		formatAmount(m.CurrentMedian),
		formatAmount(m.CurrentMean),
		formatPct(m.MedianDiffPct),
		formatPct(m.MeanDiffPct),
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
