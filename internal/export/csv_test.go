package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"eastlens/server/internal/models"

	"github.com/stretchr/testify/assert"
)

func sampleReport() *models.ComparisonReport {
	return &models.ComparisonReport{
		Overall: models.MetricPair{
			Price: models.MetricComparison{
				Available:        true,
				HistoricalMedian: 1250000,
				HistoricalMean:   1250000,
				CurrentMedian:    1690154,
				CurrentMean:      1690154,
				MedianDiffPct:    35.2,
				MeanDiffPct:      35.2,
			},
		},
		ByPostcode: []models.PostcodeComparison{
			{
				Postcode:        "2026",
				Suburb:          "Bondi",
				HistoricalCount: 2,
				CurrentCount:    1,
				Price: models.MetricComparison{
					Available:        true,
					HistoricalMedian: 1250000,
					HistoricalMean:   1250000,
					CurrentMedian:    1690154,
					CurrentMean:      1690154,
					MedianDiffPct:    35.2,
					MeanDiffPct:      35.2,
				},
			},
			{
				Postcode:        "2031",
				Suburb:          "Coogee",
				HistoricalCount: 3,
				CurrentCount:    2,
				// Price left unavailable on purpose.
			},
		},
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReport(&buf, sampleReport())
	assert.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	assert.NoError(t, err)
	// Header + two postcodes + overall.
	assert.Len(t, rows, 4)
	assert.Equal(t, reportHeader, rows[0])

	assert.Equal(t, "2026", rows[1][0])
	assert.Equal(t, "Bondi", rows[1][1])
	assert.Equal(t, "1250000.00", rows[1][2])
	assert.Equal(t, "35.2", rows[1][6])
	assert.Equal(t, "2", rows[1][8])

	// Unavailable metrics render as empty cells, counts still present.
	assert.Equal(t, "2031", rows[2][0])
	assert.Equal(t, "", rows[2][2])
	assert.Equal(t, "3", rows[2][8])

	assert.Equal(t, "OVERALL", rows[3][0])
	assert.Equal(t, "1690154.00", rows[3][4])
}

func TestWriteReportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "price_comparison.csv")
	err := WriteReportFile(path, sampleReport())
	assert.NoError(t, err)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "postcode,suburb")
	assert.Contains(t, string(data), "OVERALL")
}
