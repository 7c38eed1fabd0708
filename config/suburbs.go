package config

import (
	"sort"
	"strings"
)

// EasternSuburbs maps each Eastern Suburbs postcode to the suburbs it
// covers. Records outside these postcodes are filtered out at import time.
var EasternSuburbs = map[string][]string{
	"2021": {"Paddington", "Woollahra"},
	"2022": {"Bondi Junction"},
	"2023": {"Bellevue Hill"},
	"2024": {"Bronte", "Waverley"},
	"2025": {"Woollahra"},
	"2026": {"Bondi", "Bondi Beach", "North Bondi", "Tamarama"},
	"2027": {"Darling Point", "Edgecliff", "Point Piper"},
	"2028": {"Double Bay"},
	"2029": {"Rose Bay"},
	"2030": {"Dover Heights", "Rose Bay North", "Vaucluse", "Watsons Bay"},
	"2031": {"Clovelly", "Coogee", "Randwick", "South Coogee"},
	"2032": {"Daceyville", "Kingsford"},
	"2033": {"Kensington"},
	"2034": {"Maroubra", "South Maroubra"},
	"2035": {"Chifley", "Eastgardens", "Hillsdale", "Little Bay", "Malabar", "Matraville", "Phillip Bay"},
}

// DefaultDistricts seeds the districts table on first start. They group the
// suburbs the way locals talk about them.
var DefaultDistricts = map[string][]string{
	"Beaches": {"Bondi", "Bondi Beach", "North Bondi", "Tamarama", "Bronte", "Clovelly", "Coogee", "South Coogee", "Maroubra", "South Maroubra"},
	"Harbour": {"Darling Point", "Double Bay", "Edgecliff", "Point Piper", "Rose Bay", "Vaucluse", "Watsons Bay", "Dover Heights"},
	"Inner":   {"Paddington", "Woollahra", "Bondi Junction", "Bellevue Hill", "Waverley", "Randwick", "Kensington", "Kingsford"},
}

// EasternPostcodes returns the covered postcodes in ascending order.
func EasternPostcodes() []string {
	codes := make([]string, 0, len(EasternSuburbs))
	for pc := range EasternSuburbs {
		codes = append(codes, pc)
	}
	sort.Strings(codes)
	return codes
}

// IsEasternPostcode reports whether the postcode belongs to the Eastern
// Suburbs coverage area.
func IsEasternPostcode(postcode string) bool {
	_, ok := EasternSuburbs[postcode]
	return ok
}

// SuburbNames returns every covered suburb name, sorted.
func SuburbNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, suburbs := range EasternSuburbs {
		for _, s := range suburbs {
			if !seen[s] {
				seen[s] = true
				names = append(names, s)
			}
		}
	}
	sort.Strings(names)
	return names
}

// PostcodeForSuburb returns the postcode covering the named suburb,
// matching case-insensitively.
func PostcodeForSuburb(name string) (string, bool) {
	normalized := NormalizeSuburb(name)
	for _, pc := range EasternPostcodes() {
		for _, s := range EasternSuburbs[pc] {
			if NormalizeSuburb(s) == normalized {
				return pc, true
			}
		}
	}
	return "", false
}

// NormalizeSuburb lowercases a suburb name and collapses internal
// whitespace so user input and CSV values compare equal.
func NormalizeSuburb(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
