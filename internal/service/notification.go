package service

import (
	"context"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) List(ctx context.Context, actor domain.Actor, userID int32) ([]domain.Notification, error) {
	if err := actor.RequireViewer("list notifications", userID); err != nil {
		return nil, err
	}
	return s.noteRepo.ListByUser(ctx, userID)
}

// MarkAsRead only touches the actor's own notifications.
func (s *notificationService) MarkAsRead(ctx context.Context, actor domain.Actor, notificationID int32) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, actor.UserID)
}
