package chatbot

import (
	"testing"
	"time"

	"eastlens/server/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func date(year int) *time.Time {
	t := time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

func testBot() *Bot {
	b := NewBot(logrus.New())
	b.SetData(
		[]models.PropertyRecord{
			{RecordType: models.RecordTypeListing, Suburb: "Bondi", Postcode: "2026", Price: 1800000, Bedrooms: intPtr(3)},
			{RecordType: models.RecordTypeListing, Suburb: "Coogee", Postcode: "2031", Price: 1300000, Bedrooms: intPtr(2)},
		},
		[]models.PropertyRecord{
			{RecordType: models.RecordTypeSale, Suburb: "Bondi", Postcode: "2026", Price: 1500000, SaleDate: date(2022)},
			{RecordType: models.RecordTypeSale, Suburb: "Bondi", Postcode: "2026", Price: 1700000, SaleDate: date(2024)},
			{RecordType: models.RecordTypeSale, Suburb: "Coogee", Postcode: "2031", Price: 1100000, SaleDate: date(2023)},
			{RecordType: models.RecordTypeSale, Suburb: "Coogee", Postcode: "2031", Price: 1200000, SaleDate: date(2024)},
		},
	)
	return b
}

func TestAnswerAveragePrice(t *testing.T) {
	b := testBot()

	answer := b.Answer("What's the average price in Bondi?")
	assert.Contains(t, answer, "Historical sales")
	assert.Contains(t, answer, "2 properties")
	assert.Contains(t, answer, "$1,600,000")
}

func TestAnswerCurrentListings(t *testing.T) {
	b := testBot()

	answer := b.Answer("What do current listings cost in Coogee?")
	assert.Contains(t, answer, "Current listings")
	assert.Contains(t, answer, "$1,300,000")
}

func TestAnswerComparison(t *testing.T) {
	b := testBot()

	answer := b.Answer("Compare Bondi vs Coogee prices")
	assert.Contains(t, answer, "Bondi")
	assert.Contains(t, answer, "Coogee")
	assert.Contains(t, answer, "%")

	// A comparison without two suburbs asks for clarification.
	answer = b.Answer("compare prices")
	assert.Contains(t, answer, "two suburbs")
}

func TestAnswerTrend(t *testing.T) {
	b := testBot()

	answer := b.Answer("What's the price trend in Bondi?")
	assert.Contains(t, answer, "2022 to 2024")
	assert.Contains(t, answer, "+13.3%")
}

func TestAnswerNoMatches(t *testing.T) {
	b := testBot()

	answer := b.Answer("average price in Vaucluse")
	assert.Contains(t, answer, "No historical sales found")
}

func TestBuildFiltersPriceRange(t *testing.T) {
	b := testBot()

	f := b.buildFilters(normalize("properties between $1.5 million and $2 million"), nil)
	assert.Equal(t, 1500000.0, f.MinPrice)
	assert.Equal(t, 2000000.0, f.MaxPrice)

	f = b.buildFilters(normalize("listings under $2 million"), nil)
	assert.Equal(t, 0.0, f.MinPrice)
	assert.Equal(t, 2000000.0, f.MaxPrice)

	f = b.buildFilters(normalize("3 bedroom houses"), nil)
	assert.Equal(t, 3, f.Bedrooms)
}

func TestSuburbsInOrderOfAppearance(t *testing.T) {
	b := testBot()

	suburbs := b.suburbsIn(normalize("compare Coogee vs Bondi"))
	assert.Equal(t, []string{"Coogee", "Bondi"}, suburbs)

	// Longest name wins when suburbs share a prefix.
	suburbs = b.suburbsIn(normalize("prices in Bondi Beach"))
	assert.Equal(t, []string{"Bondi Beach"}, suburbs)
}

func TestSuggestions(t *testing.T) {
	b := testBot()
	suggestions := b.Suggestions()
	assert.NotEmpty(t, suggestions)
	assert.Contains(t, suggestions[0], "Bondi")
}
