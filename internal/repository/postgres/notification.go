package postgres

import (
	"context"
	"time"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/logger"
	"cluster-ledger-backend/internal/repository"
)

type notificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	logger.EnterMethod("notificationRepository.Create", "userID", n.UserID)

	query := `INSERT INTO notifications (user_id, message, is_read, created_on)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	logger.DatabaseCall("INSERT", "notifications", "userID", n.UserID)

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, n.UserID, n.Message, n.IsRead, now).Scan(&n.ID)
	logger.DatabaseResult("INSERT", 1, err, "notificationID", n.ID)

	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "userID", n.UserID)
		return domain.NewStoreError("create notification", err)
	}
	n.CreatedOn = now.Format(time.RFC3339)
	logger.ExitMethod("notificationRepository.Create", "notificationID", n.ID)
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int32) ([]domain.Notification, error) {
	query := `SELECT id, user_id, message, is_read, created_on
	          FROM notifications WHERE user_id = $1 ORDER BY created_on DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, domain.NewStoreError("list notifications", err)
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var createdOn time.Time
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.IsRead, &createdOn); err != nil {
			return nil, domain.NewStoreError("list notifications", err)
		}
		n.CreatedOn = createdOn.Format(time.RFC3339)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("list notifications", err)
	}
	return notes, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID int32) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return domain.NewStoreError("mark notification read", err)
	}
	return requireAffected("mark notification read", "notification", id, result)
}
