package services

import (
	"time"

	"streakpick-go/logging"

	"github.com/robfig/cron/v3"
)

// MaintenanceService runs the periodic housekeeping jobs: the midnight-UTC
// day rollover for long-lived sessions and the Monday weekly-stats reset
// broadcast. Jobs are registered as callbacks so the service stays decoupled
// from the session registry.
type MaintenanceService struct {
	cron   *cron.Cron
	logger *logging.Logger
}

// NewMaintenanceService creates the cron runner pinned to UTC. Calendar days
// and week boundaries are defined in UTC, so the jobs must fire there too.
func NewMaintenanceService() *MaintenanceService {
	return &MaintenanceService{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		logger: logging.WithPrefix("Maintenance"),
	}
}

// AddJob registers a named job on a cron schedule
func (m *MaintenanceService) AddJob(schedule, name string, run func()) error {
	_, err := m.cron.AddFunc(schedule, func() {
		m.logger.Infof("Running job: %s", name)
		run()
	})
	if err != nil {
		return err
	}
	m.logger.Infof("Registered job %s on schedule %q", name, schedule)
	return nil
}

// AddDailyRollover fires at midnight UTC, the calendar-day boundary
func (m *MaintenanceService) AddDailyRollover(run func()) error {
	return m.AddJob("0 0 * * *", "daily-rollover", run)
}

// AddWeeklyReset fires at midnight UTC on Mondays, the week boundary
func (m *MaintenanceService) AddWeeklyReset(run func()) error {
	return m.AddJob("0 0 * * 1", "weekly-reset", run)
}

// Start begins running registered jobs
func (m *MaintenanceService) Start() {
	m.cron.Start()
	m.logger.Info("Maintenance scheduler started")
}

// Stop halts the scheduler and waits for running jobs to finish
func (m *MaintenanceService) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.logger.Info("Maintenance scheduler stopped")
}
