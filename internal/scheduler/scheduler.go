package scheduler

import (
	"fmt"
	"time"

	"cluster-ledger-backend/internal/jobs"
	"cluster-ledger-backend/internal/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a scheduler with every job registered. An invalid
// schedule expression is an error.
func NewScheduler(jobRunner *jobs.JobRunner) (*Scheduler, error) {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config().Scheduler

	schedules := []struct {
		name string
		spec string
		job  func()
	}{
		{jobs.JobSendDueReminders, cfg.SendDueReminders, s.jobs.SendDueReminders},
		{jobs.JobSendOverdueNotices, cfg.SendOverdueNotices, s.jobs.SendOverdueNotices},
	}
	for _, sc := range schedules {
		if _, err := s.cron.AddFunc(sc.spec, sc.job); err != nil {
			return fmt.Errorf("failed to register %s job: %w", sc.name, err)
		}
		logger.Info("Registered cron job", "job", sc.name, "schedule", sc.spec)
	}

	logger.Info("All cron jobs registered successfully")
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
