package repository

import (
	"context"
	"time"

	"cluster-ledger-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id int32, passwordHash string) error
	UpdatePhone(ctx context.Context, id int32, phone string) error
	Delete(ctx context.Context, id int32) error
	ListMembers(ctx context.Context) ([]domain.MemberSummary, error)
}

type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id int32) (*domain.Loan, error)
	// FindActiveByUser returns nil without error when the user has no active loan.
	FindActiveByUser(ctx context.Context, userID int32) (*domain.Loan, error)
	AdjustBalance(ctx context.Context, id int32, amount decimal.Decimal, direction domain.BalanceDirection) error
	CloseIfSettled(ctx context.Context, id int32) error
	ReactivateIfNeeded(ctx context.Context, id int32) error
	Delete(ctx context.Context, id int32) error
}

type RecordRepository interface {
	Create(ctx context.Context, record *domain.FinancialRecord) error
	GetByID(ctx context.Context, id int32) (*domain.FinancialRecord, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.FinancialRecord, error)
	ListPendingDueBetween(ctx context.Context, from, to time.Time) ([]domain.FinancialRecord, error)
	// UpdateStatus writes status and date_recorded; a nil recordedAt clears the date.
	UpdateStatus(ctx context.Context, id int32, status domain.RecordStatus, recordedAt *time.Time) error
	Delete(ctx context.Context, id int32) error
	DeleteByLoan(ctx context.Context, loanID int32) (int64, error)
	// TransitionAll moves every record of the user and type whose status is in from to status to.
	TransitionAll(ctx context.Context, userID int32, recordType domain.RecordType, from []domain.RecordStatus, to domain.RecordStatus) (int64, error)
	SumAmount(ctx context.Context, userID int32, recordType domain.RecordType, statuses []domain.RecordStatus) (decimal.Decimal, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	ListByUser(ctx context.Context, userID int32) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

// Repositories groups the repositories that share one unit of work.
type Repositories struct {
	Users         UserRepository
	Loans         LoanRepository
	Records       RecordRepository
	Notifications NotificationRepository
}

// TxStore runs multi-step ledger operations atomically.
type TxStore interface {
	// Repos returns repositories bound to no transaction.
	Repos() Repositories
	// WithTx executes fn within a transaction. Any error returned by fn rolls
	// back every write fn made.
	WithTx(ctx context.Context, fn func(repos Repositories) error) error
}
