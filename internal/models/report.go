package models

// MetricComparison compares one metric (price, or price per square meter)
// between the current and historical sides. Available is false when either
// side has no usable values or the historical value would divide by zero;
// callers must not read the numeric fields in that case. An explicit flag is
// used instead of zero sentinels so "no data" can never be mistaken for
// "no difference".
type MetricComparison struct {
	Available        bool    `json:"available"`
	HistoricalMedian float64 `json:"historical_median"`
	HistoricalMean   float64 `json:"historical_mean"`
	CurrentMedian    float64 `json:"current_median"`
	CurrentMean      float64 `json:"current_mean"`
	MedianDiffPct    float64 `json:"median_diff_pct"`
	MeanDiffPct      float64 `json:"mean_diff_pct"`
}

// MetricPair holds the plain price comparison and, when both sides have area
// data, the price-per-square-meter comparison.
type MetricPair struct {
	Price       MetricComparison `json:"price"`
	PricePerSqm MetricComparison `json:"price_per_sqm"`
}

// PostcodeComparison is one by-postcode row of the report. Counts are of
// valid-price records only.
type PostcodeComparison struct {
	Postcode        string           `json:"postcode"`
	Suburb          string           `json:"suburb"`
	HistoricalCount int              `json:"historical_count"`
	CurrentCount    int              `json:"current_count"`
	Price           MetricComparison `json:"price"`
	PricePerSqm     MetricComparison `json:"price_per_sqm"`
}

// MarketInsights counts postcodes where current listings sit above
// (overvalued) or below (undervalued) the historical median. Ties count for
// neither side.
type MarketInsights struct {
	Overvalued  int `json:"overvalued"`
	Undervalued int `json:"undervalued"`
}

// ComparisonReport is the full output of a comparison run. ByPostcode is
// ordered by ascending numeric postcode so identical inputs always produce
// an identical report.
type ComparisonReport struct {
	Overall         MetricPair           `json:"overall"`
	RecentVsCurrent MetricPair           `json:"recent_vs_current"`
	ByPostcode      []PostcodeComparison `json:"by_postcode"`
	Insights        MarketInsights       `json:"insights"`
}
