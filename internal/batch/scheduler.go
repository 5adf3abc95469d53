// internal/batch/scheduler.go
package batch

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"nomad-workers/internal/common/config"
	"nomad-workers/internal/common/logger"
	"nomad-workers/internal/engine/profile"
)

// Scheduler runs the nightly per-kind context refreshes and the weekly
// full refresh on cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	driver *Driver
	logger logger.Logger
}

// NewScheduler registers the configured refresh schedules. Empty cron
// expressions disable the corresponding job.
func NewScheduler(driver *Driver, schedules config.ScheduleConfig, log logger.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		driver: driver,
		logger: log,
	}

	kinds := []struct {
		expr string
		kind profile.Kind
	}{
		{schedules.CityRefresh, profile.KindCity},
		{schedules.JobRefresh, profile.KindJob},
		{schedules.UserRefresh, profile.KindUser},
	}
	for _, entry := range kinds {
		if entry.expr == "" {
			continue
		}
		kind := entry.kind
		if _, err := s.cron.AddFunc(entry.expr, func() { s.runKind(kind) }); err != nil {
			return nil, fmt.Errorf("invalid %s refresh schedule %q: %w", kind, entry.expr, err)
		}
	}

	if schedules.FullRefresh != "" {
		if _, err := s.cron.AddFunc(schedules.FullRefresh, s.runFull); err != nil {
			return nil, fmt.Errorf("invalid full refresh schedule %q: %w", schedules.FullRefresh, err)
		}
	}

	return s, nil
}

// Start begins running scheduled refreshes in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("refresh scheduler started", map[string]interface{}{
		"entries": len(s.cron.Entries()),
	})
}

// Stop halts the scheduler, waiting for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("refresh scheduler stopped", nil)
}

// Entries exposes the scheduled entry count, for startup logging.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) runKind(kind profile.Kind) {
	if _, err := s.driver.RefreshContexts(context.Background(), kind); err != nil {
		s.logger.Error("scheduled context refresh failed", map[string]interface{}{
			"kind":  string(kind),
			"error": err.Error(),
		})
	}
}

func (s *Scheduler) runFull() {
	stats := s.driver.RefreshAllContexts(context.Background())
	s.logger.Info("full context refresh finished", map[string]interface{}{
		"processed": stats.Processed,
		"skipped":   stats.Skipped,
	})
}
