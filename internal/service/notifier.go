package service

import (
	"context"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/logger"
	"cluster-ledger-backend/internal/metrics"
	"cluster-ledger-backend/internal/repository"
)

type notifier struct {
	noteRepo repository.NotificationRepository
}

// NewNotifier stores notifications through noteRepo. It must be given a
// repository outside any transaction so messages are written after commit.
func NewNotifier(noteRepo repository.NotificationRepository) Notifier {
	return &notifier{noteRepo: noteRepo}
}

func (n *notifier) Notify(ctx context.Context, userID int32, message string) {
	note := &domain.Notification{
		UserID:  userID,
		Message: message,
	}
	if err := n.noteRepo.Create(ctx, note); err != nil {
		logger.ErrorContext(ctx, "Failed to store notification", "userID", userID, "error", err)
		metrics.NotificationFailed()
		return
	}
	logger.Debug("Notification stored", "userID", userID, "notificationID", note.ID)
}
