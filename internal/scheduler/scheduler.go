package scheduler

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RefreshFunc reimports the datasets and rebuilds the cached report.
type RefreshFunc func() error

// Scheduler runs the refresh job once at startup and then daily at the
// configured hour.
type Scheduler struct {
	refresh      RefreshFunc
	refreshHour  int
	logger       *logrus.Logger
	stopChan     chan struct{}
	wg           sync.WaitGroup
	jobMutex     sync.Mutex // Ensures sequential job execution
	isStartupRun bool       // Tracks whether we're in startup run
}

// NewScheduler creates a new scheduler
func NewScheduler(refresh RefreshFunc, refreshHour int, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		refresh:      refresh,
		refreshHour:  refreshHour,
		logger:       logger,
		stopChan:     make(chan struct{}),
		isStartupRun: true,
	}
}

// Start begins the scheduled tasks
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

// runScheduler handles the startup run and the daily tick loop
func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	go func() {
		s.jobMutex.Lock()
		defer s.jobMutex.Unlock()
		s.logger.Info("Running startup refresh job")
		s.runRefresh()
		s.isStartupRun = false
		s.logger.Info("Startup refresh job completed")
	}()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case t := <-ticker.C:
			s.executeScheduledJobs(t)
		}
	}
}

// executeScheduledJobs runs the refresh when the configured hour comes up
func (s *Scheduler) executeScheduledJobs(t time.Time) {
	if s.isStartupRun {
		s.logger.Debug("Skipping scheduled jobs while startup is in progress")
		return
	}

	if t.Hour() != s.refreshHour || t.Minute() != 0 {
		return
	}

	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	s.logger.WithFields(logrus.Fields{
		"hour":   t.Hour(),
		"minute": t.Minute(),
	}).Info("Starting scheduled refresh job")
	s.runRefresh()
	s.logger.Info("Completed scheduled refresh job")
}

func (s *Scheduler) runRefresh() {
	if err := s.refresh(); err != nil {
		s.logger.WithError(err).Error("Refresh job failed")
		return
	}
	s.logger.Info("Refresh job completed successfully")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
