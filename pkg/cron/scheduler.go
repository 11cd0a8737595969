// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/statementdesk/ingest/internal/domain/bankprofile"
)

// DefaultRefreshSchedule re-warms the profile cache every five minutes, in
// step with the cache TTL.
const DefaultRefreshSchedule = "*/5 * * * *"

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	registry *bankprofile.Registry
	schedule string
	logger   *slog.Logger
}

// NewScheduler creates a new job scheduler. An empty schedule falls back to
// DefaultRefreshSchedule.
func NewScheduler(registry *bankprofile.Registry, schedule string, logger *slog.Logger) *Scheduler {
	// Standard 5-field format, no seconds.
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	if schedule == "" {
		schedule = DefaultRefreshSchedule
	}
	return &Scheduler{
		cron:     c,
		registry: registry,
		schedule: schedule,
		logger:   logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.refreshProfileCache)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("profile_refresh", s.schedule),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the profile cache refresh (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.refreshProfileCache()
}

// refreshProfileCache re-fetches every cached profile key so parse requests
// rarely pay the backing-store round trip.
func (s *Scheduler) refreshProfileCache() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s.logger.Debug("refreshing bank profile cache")
	s.registry.RefreshAll(ctx)
}
