package cache

import (
	"os"
	"sync"
	"time"

	"eastlens/server/internal/models"

	"github.com/sirupsen/logrus"
)

// Store holds the loaded datasets and the last built comparison report so
// the API does not hit the database and recompute on every request. The
// comparison engine itself stays stateless; this object is owned by the
// composition layer and invalidated on import.
type Store struct {
	logger *logrus.Logger
	ttl    time.Duration
	now    func() time.Time

	mu         sync.RWMutex
	current    []models.PropertyRecord
	historical []models.PropertyRecord
	dataAt     time.Time
	report     *models.ComparisonReport
	reportAt   time.Time
}

// NewStore creates a cache whose entries expire after ttl.
func NewStore(ttl time.Duration, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Store{
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Datasets returns the cached record slices. ok is false when nothing is
// cached or the entry has expired.
func (s *Store) Datasets() (current, historical []models.PropertyRecord, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dataAt.IsZero() || s.expired(s.dataAt) {
		return nil, nil, false
	}
	return s.current, s.historical, true
}

// SetDatasets stores the record slices.
func (s *Store) SetDatasets(current, historical []models.PropertyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = current
	s.historical = historical
	s.dataAt = s.now()
	s.logger.WithFields(logrus.Fields{
		"current":    len(current),
		"historical": len(historical),
	}).Debug("Cached datasets")
}

// Report returns the cached comparison report, nil+false when stale.
func (s *Store) Report() (*models.ComparisonReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.report == nil || s.expired(s.reportAt) {
		return nil, false
	}
	return s.report, true
}

// SetReport stores a freshly built report.
func (s *Store) SetReport(report *models.ComparisonReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report = report
	s.reportAt = s.now()
}

// Invalidate drops everything. Called after imports so the next request
// sees fresh data.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	s.historical = nil
	s.dataAt = time.Time{}
	s.report = nil
	s.reportAt = time.Time{}
	s.logger.Debug("Cache invalidated")
}

func (s *Store) expired(at time.Time) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(at) > s.ttl
}
