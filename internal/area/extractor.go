package area

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// unitFamily is one recognized area unit vocabulary with its conversion
// factor to square meters.
type unitFamily struct {
	name    string
	factor  float64
	pattern *regexp.Regexp
}

const number = `(\d+(?:,\d{3})*(?:\.\d+)?)`

// Families are tried in this order. A square-meter figure always wins over
// an acreage figure, even when the acreage appears earlier in the text.
var families = []unitFamily{
	{"square_meters", 1.0, regexp.MustCompile(number + `\s*(?:sq\s*m\b|sqm\b|m²|square\s*met(?:er|re)s?\b)`)},
	{"square_feet", 0.092903, regexp.MustCompile(number + `\s*(?:sq\s*ft\b|sqft\b|ft²|square\s*(?:feet|foot)\b)`)},
	{"acres", 4046.86, regexp.MustCompile(number + `\s*(?:acres?\b|ac\b)`)},
	{"hectares", 10000.0, regexp.MustCompile(number + `\s*(?:hectares?\b|ha\b)`)},
	{"square_yards", 0.836127, regexp.MustCompile(number + `\s*(?:sq\s*yds?\b|sqyd\b|yd²|square\s*yards?\b)`)},
}

// Extractor pulls land or floor sizes out of free-form listing text and
// normalizes them to square meters.
type Extractor struct {
	logger *logrus.Logger
}

// NewExtractor creates a new area extractor
func NewExtractor(logger *logrus.Logger) *Extractor {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Extractor{logger: logger}
}

// Extract returns the first area figure found in raw, converted to square
// meters. The bool is false when no unit-bearing number is present. Matching
// is case-insensitive and tolerant of internal whitespace and thousands
// separators. It never fails on garbage input.
func (e *Extractor) Extract(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	text := strings.ToLower(raw)
	for _, f := range families {
		m := f.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			e.logger.WithFields(logrus.Fields{
				"token": m[1],
				"unit":  f.name,
			}).Warn("Unparseable area token")
			continue
		}
		return value * f.factor, true
	}
	return 0, false
}
