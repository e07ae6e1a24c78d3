package jobs

import (
	"context"
	"fmt"
	"time"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/logger"
	"cluster-ledger-backend/internal/metrics"
	"cluster-ledger-backend/internal/utils"
)

// SendDueReminders notifies members of pending records falling due within
// the configured lead days, today included.
func (jr *JobRunner) SendDueReminders() {
	jr.runWithRecovery(JobSendDueReminders, func() {
		sent, err := jr.sendDueReminders(context.Background())
		if err != nil {
			logger.Error("Failed to send due reminders", "error", err)
			return
		}
		logger.Info("Due reminders sent", "count", sent)
	})
}

func (jr *JobRunner) sendDueReminders(ctx context.Context) (int, error) {
	today := utils.CalendarDay(jr.now(), jr.config.Location())
	until := today.AddDate(0, 0, jr.config.Ledger.ReminderLeadDays)

	recs, err := jr.records.ListPendingDueBetween(ctx, today, until)
	if err != nil {
		return 0, err
	}
	return jr.notifyEach(ctx, recs, func(rec domain.FinancialRecord, amount string) string {
		return fmt.Sprintf("Reminder: %s of %s is due on %s", rec.Type.Label(), amount, utils.FormatDate(rec.DueDate))
	}), nil
}

// SendOverdueNotices notifies members of every pending record whose due date
// has passed in the ledger time zone.
func (jr *JobRunner) SendOverdueNotices() {
	jr.runWithRecovery(JobSendOverdueNotices, func() {
		sent, err := jr.sendOverdueNotices(context.Background())
		if err != nil {
			logger.Error("Failed to send overdue notices", "error", err)
			return
		}
		logger.Info("Overdue notices sent", "count", sent)
	})
}

func (jr *JobRunner) sendOverdueNotices(ctx context.Context) (int, error) {
	yesterday := utils.CalendarDay(jr.now(), jr.config.Location()).AddDate(0, 0, -1)

	recs, err := jr.records.ListPendingDueBetween(ctx, time.Time{}, yesterday)
	if err != nil {
		return 0, err
	}
	return jr.notifyEach(ctx, recs, func(rec domain.FinancialRecord, amount string) string {
		return fmt.Sprintf("Overdue: %s of %s was due on %s", rec.Type.Label(), amount, utils.FormatDate(rec.DueDate))
	}), nil
}

// notifyEach stores one notification per record and returns how many were
// stored. A failed record is logged and skipped.
func (jr *JobRunner) notifyEach(ctx context.Context, recs []domain.FinancialRecord, message func(domain.FinancialRecord, string) string) int {
	count := 0
	for _, rec := range recs {
		note := &domain.Notification{
			UserID:  rec.UserID,
			Message: message(rec, utils.FormatAmount(jr.config.Ledger.CurrencySymbol, rec.Amount)),
		}
		if err := jr.notes.Create(ctx, note); err != nil {
			logger.Error("Failed to store notification",
				"record_id", rec.ID,
				"user_id", rec.UserID,
				"error", err)
			metrics.NotificationFailed()
			continue
		}
		count++
		logger.Debug("Notification stored", "record_id", rec.ID, "user_id", rec.UserID)
	}
	return count
}
