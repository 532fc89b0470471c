// Package reset clears the timetable once per day at a fixed wall-clock
// time, standing in for the external scheduled trigger.
package reset

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds the daily reset schedule.
type Config struct {
	// Hour is the hour (0-23) the timetable is cleared. Default midnight.
	Hour int
	// Minute is the minute (0-59) within the hour.
	Minute int
	// CheckInterval is how often to check whether the reset is due.
	CheckInterval time.Duration
}

// DefaultConfig returns the default schedule: local midnight, checked
// every minute.
func DefaultConfig() Config {
	return Config{CheckInterval: time.Minute}
}

// Resetter performs the full clear.
type Resetter interface {
	ResetAll(ctx context.Context) error
}

// Scheduler fires the reset once per day. The lastRunDate guard keeps a
// restart or a slow tick from clearing the timetable twice.
type Scheduler struct {
	cfg      Config
	resetter Resetter
	logger   zerolog.Logger
	now      func() time.Time

	mu          sync.Mutex
	lastRunDate string // YYYY-MM-DD of last run
}

// New creates a scheduler. The current date counts as already run, so a
// process started mid-day does not wipe existing bookings.
func New(cfg Config, resetter Resetter, logger zerolog.Logger) *Scheduler {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Minute
	}
	s := &Scheduler{
		cfg:      cfg,
		resetter: resetter,
		logger:   logger.With().Str("component", "reset").Logger(),
		now:      time.Now,
	}
	s.lastRunDate = s.now().Format("2006-01-02")
	return s
}

// Run blocks, checking the clock until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runIfDue(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) runIfDue(ctx context.Context) {
	now := s.now()
	today := now.Format("2006-01-02")

	s.mu.Lock()
	if s.lastRunDate == today {
		s.mu.Unlock()
		return
	}
	if now.Hour() < s.cfg.Hour || (now.Hour() == s.cfg.Hour && now.Minute() < s.cfg.Minute) {
		s.mu.Unlock()
		return
	}
	s.lastRunDate = today
	s.mu.Unlock()

	if err := s.resetter.ResetAll(ctx); err != nil {
		s.logger.Error().Err(err).Msg("daily reset failed")
		return
	}
	s.logger.Info().Str("date", today).Msg("daily reset completed")
}
