package chatbot

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"eastlens/server/config"
	"eastlens/server/internal/analysis"
	"eastlens/server/internal/models"

	"github.com/sirupsen/logrus"
)

var (
	comparisonRegexp    = regexp.MustCompile(`(?i)\b(compare|vs\.?|versus|difference)\b`)
	trendRegexp         = regexp.MustCompile(`(?i)\b(trend|growth|increase|decrease|change)\b`)
	priceRegexp         = regexp.MustCompile(`(?i)\b(price|cost|value|expensive|cheap|affordable)\b`)
	currentRegexp       = regexp.MustCompile(`(?i)\b(current|listing|listings|for sale)\b`)
	bedroomRegexp       = regexp.MustCompile(`(?i)(\d+)\s*(?:bedroom|bed|beds)\b`)
	bathroomRegexp      = regexp.MustCompile(`(?i)(\d+)\s*(?:bathroom|bath|baths)\b`)
	millionRangeRegexp  = regexp.MustCompile(`(?i)\$?(\d+(?:\.\d+)?)\s*(?:million|mil|m)\b.*?\$?(\d+(?:\.\d+)?)\s*(?:million|mil|m)\b`)
	dollarRangeRegexp   = regexp.MustCompile(`\$(\d{1,3}(?:,\d{3})*)\D+\$(\d{1,3}(?:,\d{3})*)`)
	millionSingleRegexp = regexp.MustCompile(`(?i)(?:under|below|less than|max)\s*\$?(\d+(?:\.\d+)?)\s*(?:million|mil|m)\b`)
)

// Filters are the record constraints extracted from a query.
type Filters struct {
	Suburb   string
	MinPrice float64
	MaxPrice float64
	Bedrooms int
}

// Empty reports whether no constraint was extracted.
func (f Filters) Empty() bool {
	return f.Suburb == "" && f.MinPrice == 0 && f.MaxPrice == 0 && f.Bedrooms == 0
}

// Bot answers natural-language questions about the datasets with canned
// aggregate responses. Pure pattern matching, no ML.
type Bot struct {
	logger *logrus.Logger

	mu         sync.RWMutex
	current    []models.PropertyRecord
	historical []models.PropertyRecord

	// suburb names sorted longest first so "bondi beach" wins over "bondi"
	suburbNames []string
}

// NewBot creates a chatbot without data; call SetData before answering.
func NewBot(logger *logrus.Logger) *Bot {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	names := config.SuburbNames()
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return &Bot{logger: logger, suburbNames: names}
}

// SetData swaps in fresh datasets.
func (b *Bot) SetData(current, historical []models.PropertyRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = current
	b.historical = historical
}

// Answer processes one user query.
func (b *Bot) Answer(query string) string {
	b.logger.WithField("query", query).Info("Processing chatbot query")

	normalized := normalize(query)
	suburbs := b.suburbsIn(normalized)
	filters := b.buildFilters(normalized, suburbs)

	switch {
	case comparisonRegexp.MatchString(normalized):
		if len(suburbs) >= 2 {
			return b.compareSuburbs(suburbs[0], suburbs[1])
		}
		return "Please name two suburbs to compare, e.g. \"compare Bondi vs Coogee\"."

	case trendRegexp.MatchString(normalized):
		return b.trendAnalysis(filters.Suburb)

	case priceRegexp.MatchString(normalized):
		if currentRegexp.MatchString(normalized) {
			return b.priceAnalysis(b.filterCurrent(filters), "Current listings")
		}
		return b.priceAnalysis(b.filterHistorical(filters), "Historical sales")

	default:
		historical := b.priceAnalysis(b.filterHistorical(filters), "Historical sales")
		current := b.priceAnalysis(b.filterCurrent(filters), "Current listings")
		return historical + "\n\n" + current
	}
}

// Suggestions returns example questions for the UI.
func (b *Bot) Suggestions() []string {
	return []string{
		"What's the average price in Bondi?",
		"Show me properties in Paddington under $2 million",
		"Compare Bondi vs Coogee prices",
		"What's the price trend in the Eastern Suburbs?",
		"Find 3-bedroom listings in Vaucluse",
		"Show me current listings in Double Bay",
	}
}

func (b *Bot) buildFilters(normalized string, suburbs []string) Filters {
	var f Filters
	if len(suburbs) > 0 {
		f.Suburb = suburbs[0]
	}

	if m := millionRangeRegexp.FindStringSubmatch(normalized); m != nil {
		f.MinPrice = parseAmount(m[1]) * 1_000_000
		f.MaxPrice = parseAmount(m[2]) * 1_000_000
	} else if m := dollarRangeRegexp.FindStringSubmatch(normalized); m != nil {
		f.MinPrice = parseAmount(m[1])
		f.MaxPrice = parseAmount(m[2])
	} else if m := millionSingleRegexp.FindStringSubmatch(normalized); m != nil {
		f.MaxPrice = parseAmount(m[1]) * 1_000_000
	}

	if m := bedroomRegexp.FindStringSubmatch(normalized); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			f.Bedrooms = n
		}
	}
	return f
}

// suburbsIn returns the suburbs mentioned in the query, in order of
// appearance.
func (b *Bot) suburbsIn(normalized string) []string {
	type hit struct {
		pos  int
		name string
	}
	var hits []hit
	covered := make([]bool, len(normalized))

	for _, name := range b.suburbNames {
		needle := strings.ToLower(name)
		pos := strings.Index(normalized, needle)
		if pos < 0 || covered[pos] {
			continue
		}
		for i := pos; i < pos+len(needle); i++ {
			covered[i] = true
		}
		hits = append(hits, hit{pos: pos, name: name})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	names := make([]string, len(hits))
	for i, h := range hits {
		names[i] = h.name
	}
	return names
}

func (b *Bot) filterHistorical(f Filters) []models.PropertyRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return filterRecords(b.historical, f)
}

func (b *Bot) filterCurrent(f Filters) []models.PropertyRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return filterRecords(b.current, f)
}

func filterRecords(records []models.PropertyRecord, f Filters) []models.PropertyRecord {
	var out []models.PropertyRecord
	suburb := config.NormalizeSuburb(f.Suburb)
	for i := range records {
		r := &records[i]
		if suburb != "" && config.NormalizeSuburb(r.Suburb) != suburb {
			continue
		}
		if f.MinPrice > 0 && r.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && r.Price > f.MaxPrice {
			continue
		}
		if f.Bedrooms > 0 && (r.Bedrooms == nil || *r.Bedrooms < f.Bedrooms) {
			continue
		}
		out = append(out, records[i])
	}
	return out
}

func (b *Bot) priceAnalysis(records []models.PropertyRecord, label string) string {
	var prices []float64
	for i := range records {
		if records[i].HasValidPrice() {
			prices = append(prices, records[i].Price)
		}
	}
	if len(prices) == 0 {
		return fmt.Sprintf("No %s found matching your criteria.", strings.ToLower(label))
	}

	min, max := prices[0], prices[0]
	for _, p := range prices {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}

	return fmt.Sprintf("%s: %d properties, average %s, median %s, range %s - %s.",
		label,
		len(prices),
		formatPrice(analysis.Mean(prices)),
		formatPrice(analysis.Median(prices)),
		formatPrice(min),
		formatPrice(max),
	)
}

func (b *Bot) compareSuburbs(suburb1, suburb2 string) string {
	one := b.filterHistorical(Filters{Suburb: suburb1})
	two := b.filterHistorical(Filters{Suburb: suburb2})

	if len(one) == 0 && len(two) == 0 {
		return fmt.Sprintf("No sales data found for %s or %s.", suburb1, suburb2)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Suburb comparison: %s vs %s.\n", suburb1, suburb2)

	var mean1, mean2 float64
	if len(one) > 0 {
		mean1 = analysis.Mean(prices(one))
		fmt.Fprintf(&sb, "%s: %d sales, average %s, median %s.\n",
			suburb1, len(one), formatPrice(mean1), formatPrice(analysis.Median(prices(one))))
	}
	if len(two) > 0 {
		mean2 = analysis.Mean(prices(two))
		fmt.Fprintf(&sb, "%s: %d sales, average %s, median %s.\n",
			suburb2, len(two), formatPrice(mean2), formatPrice(analysis.Median(prices(two))))
	}
	if len(one) > 0 && len(two) > 0 {
		if diff, ok := analysis.PercentDiff(mean2, mean1); ok {
			fmt.Fprintf(&sb, "%s averages %+.1f%% relative to %s.", suburb2, diff, suburb1)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) trendAnalysis(suburb string) string {
	records := b.filterHistorical(Filters{Suburb: suburb})

	yearly := make(map[int][]float64)
	for i := range records {
		r := &records[i]
		if r.SaleDate == nil || !r.HasValidPrice() {
			continue
		}
		year := r.SaleDate.Year()
		yearly[year] = append(yearly[year], r.Price)
	}
	if len(yearly) < 2 {
		return "Insufficient data for trend analysis."
	}

	years := make([]int, 0, len(yearly))
	for y := range yearly {
		years = append(years, y)
	}
	sort.Ints(years)

	firstYear, lastYear := years[0], years[len(years)-1]
	firstMean := analysis.Mean(yearly[firstYear])
	lastMean := analysis.Mean(yearly[lastYear])
	growth, ok := analysis.PercentDiff(lastMean, firstMean)
	if !ok {
		return "Insufficient data for trend analysis."
	}

	scope := "the Eastern Suburbs"
	if suburb != "" {
		scope = suburb
	}
	return fmt.Sprintf("Price trend for %s, %d to %d: average moved from %s to %s (%+.1f%% total, %+.1f%% per year).",
		scope, firstYear, lastYear,
		formatPrice(firstMean), formatPrice(lastMean),
		growth, growth/float64(lastYear-firstYear),
	)
}

func prices(records []models.PropertyRecord) []float64 {
	var out []float64
	for i := range records {
		if records[i].HasValidPrice() {
			out = append(out, records[i].Price)
		}
	}
	return out
}

func parseAmount(value string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

func formatPrice(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	// Insert thousands separators right to left.
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return "$" + strings.Join(parts, ",")
}

func normalize(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
