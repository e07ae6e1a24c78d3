package jobs

import (
	"fmt"
	"sort"
	"time"

	"cluster-ledger-backend/internal/config"
	"cluster-ledger-backend/internal/logger"
	"cluster-ledger-backend/internal/repository"
)

// JobRunner coordinates all scheduled jobs. Jobs only read ledger state and
// append notifications.
type JobRunner struct {
	records repository.RecordRepository
	notes   repository.NotificationRepository
	config  *config.Config
	now     func() time.Time
}

// NewJobRunner creates a new job runner over repositories bound to no transaction
func NewJobRunner(repos repository.Repositories, cfg *config.Config) *JobRunner {
	return &JobRunner{
		records: repos.Records,
		notes:   repos.Notifications,
		config:  cfg,
		now:     time.Now,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// Job names accepted by RunJob and used in logs.
const (
	JobSendDueReminders   = "send-due-reminders"
	JobSendOverdueNotices = "send-overdue-notices"
)

// Jobs returns the runnable jobs by name
func (jr *JobRunner) Jobs() map[string]func() {
	return map[string]func(){
		JobSendDueReminders:   jr.SendDueReminders,
		JobSendOverdueNotices: jr.SendOverdueNotices,
	}
}

// JobNames lists the job names in a stable order
func (jr *JobRunner) JobNames() []string {
	names := make([]string, 0, 2)
	for name := range jr.Jobs() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunJob runs one job by name, e.g. "send-due-reminders" (for manual execution)
func (jr *JobRunner) RunJob(name string) error {
	job, ok := jr.Jobs()[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	job()
	return nil
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.SendDueReminders()
	jr.SendOverdueNotices()
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	start := time.Now()
	jobFunc()
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
}
