package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSuburb(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercase passthrough",
			input:    "bondi",
			expected: "bondi",
		},
		{
			name:     "mixed case",
			input:    "Bondi Beach",
			expected: "bondi beach",
		},
		{
			name:     "extra whitespace",
			input:    "  Double   Bay ",
			expected: "double bay",
		},
		{
			name:     "all caps CSV value",
			input:    "NORTH BONDI",
			expected: "north bondi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSuburb(tt.input))
		})
	}
}

func TestIsEasternPostcode(t *testing.T) {
	assert.True(t, IsEasternPostcode("2021"))
	assert.True(t, IsEasternPostcode("2035"))
	assert.False(t, IsEasternPostcode("2000"))
	assert.False(t, IsEasternPostcode(""))
	assert.False(t, IsEasternPostcode("2026.0"))
}

func TestEasternPostcodesSorted(t *testing.T) {
	codes := EasternPostcodes()
	assert.Len(t, codes, 15)
	assert.Equal(t, "2021", codes[0])
	assert.Equal(t, "2035", codes[len(codes)-1])
	for i := 1; i < len(codes); i++ {
		assert.Less(t, codes[i-1], codes[i])
	}
}

func TestPostcodeForSuburb(t *testing.T) {
	pc, ok := PostcodeForSuburb("Bondi Beach")
	assert.True(t, ok)
	assert.Equal(t, "2026", pc)

	pc, ok = PostcodeForSuburb("coogee")
	assert.True(t, ok)
	assert.Equal(t, "2031", pc)

	_, ok = PostcodeForSuburb("Parramatta")
	assert.False(t, ok)
}

func TestDefaultDistrictsCoverKnownSuburbs(t *testing.T) {
	for district, suburbs := range DefaultDistricts {
		for _, s := range suburbs {
			_, ok := PostcodeForSuburb(s)
			assert.True(t, ok, "district %s references unknown suburb %s", district, s)
		}
	}
}
