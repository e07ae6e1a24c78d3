package postgres

import (
	"context"
	"database/sql"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/logger"
	"cluster-ledger-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.LoanRepository
	repository.RecordRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		LoanRepository:         NewLoanRepository(db),
		RecordRepository:       NewRecordRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

func (s *Store) Repos() repository.Repositories {
	return repository.Repositories{
		Users:         s.UserRepository,
		Loans:         s.LoanRepository,
		Records:       s.RecordRepository,
		Notifications: s.NotificationRepository,
	}
}

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStoreError("begin transaction", err)
	}
	defer tx.Rollback()

	repos := repository.Repositories{
		Users:         NewUserRepository(tx),
		Loans:         NewLoanRepository(tx),
		Records:       NewRecordRepository(tx),
		Notifications: NewNotificationRepository(tx),
	}
	if err := fn(repos); err != nil {
		logger.Debug("Transaction rolled back", "error", err)
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStoreError("commit transaction", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
