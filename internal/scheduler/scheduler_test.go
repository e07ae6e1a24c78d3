package scheduler

import (
	"testing"

	"cluster-ledger-backend/internal/config"
	"cluster-ledger-backend/internal/jobs"
	"cluster-ledger-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunner(sc config.SchedulerConfig) *jobs.JobRunner {
	cfg := &config.Config{
		Ledger:    config.LedgerConfig{Timezone: "UTC", CurrencySymbol: "₱", ReminderLeadDays: 3},
		Scheduler: sc,
	}
	return jobs.NewJobRunner(memory.NewStore().Repos(), cfg)
}

func TestNewScheduler(t *testing.T) {
	t.Run("Registers every job", func(t *testing.T) {
		s, err := NewScheduler(newRunner(config.SchedulerConfig{
			SendDueReminders:   "0 0 0 * * *",
			SendOverdueNotices: "0 0 1 * * *",
		}))
		require.NoError(t, err)
		assert.Equal(t, 2, s.Entries())

		s.Start()
		s.Stop()
	})

	t.Run("Invalid schedule", func(t *testing.T) {
		_, err := NewScheduler(newRunner(config.SchedulerConfig{
			SendDueReminders:   "every morning",
			SendOverdueNotices: "0 0 1 * * *",
		}))
		assert.ErrorContains(t, err, "send-due-reminders")
	})
}
