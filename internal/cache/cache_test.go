package cache

import (
	"testing"
	"time"

	"eastlens/server/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestStoreDatasets(t *testing.T) {
	s := NewStore(time.Hour, nil)

	_, _, ok := s.Datasets()
	assert.False(t, ok)

	current := []models.PropertyRecord{{Postcode: "2026", Price: 1500000}}
	historical := []models.PropertyRecord{{Postcode: "2026", Price: 1400000}}
	s.SetDatasets(current, historical)

	gotCurrent, gotHistorical, ok := s.Datasets()
	assert.True(t, ok)
	assert.Len(t, gotCurrent, 1)
	assert.Len(t, gotHistorical, 1)
}

func TestStoreReport(t *testing.T) {
	s := NewStore(time.Hour, nil)

	_, ok := s.Report()
	assert.False(t, ok)

	report := &models.ComparisonReport{}
	s.SetReport(report)

	got, ok := s.Report()
	assert.True(t, ok)
	assert.Same(t, report, got)
}

func TestStoreExpiry(t *testing.T) {
	s := NewStore(time.Hour, nil)

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	s.SetDatasets([]models.PropertyRecord{{Price: 1}}, nil)
	s.SetReport(&models.ComparisonReport{})

	clock = clock.Add(59 * time.Minute)
	_, _, ok := s.Datasets()
	assert.True(t, ok)

	clock = clock.Add(2 * time.Minute)
	_, _, ok = s.Datasets()
	assert.False(t, ok)
	_, ok = s.Report()
	assert.False(t, ok)
}

func TestStoreInvalidate(t *testing.T) {
	s := NewStore(time.Hour, nil)
	s.SetDatasets([]models.PropertyRecord{{Price: 1}}, nil)
	s.SetReport(&models.ComparisonReport{})

	s.Invalidate()

	_, _, ok := s.Datasets()
	assert.False(t, ok)
	_, ok = s.Report()
	assert.False(t, ok)
}

func TestStoreZeroTTLNeverExpires(t *testing.T) {
	s := NewStore(0, nil)
	s.SetReport(&models.ComparisonReport{})

	s.now = func() time.Time { return time.Now().Add(100 * 24 * time.Hour) }
	_, ok := s.Report()
	assert.True(t, ok)
}
