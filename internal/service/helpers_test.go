package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/repository"
	"cluster-ledger-backend/internal/repository/memory"
	"cluster-ledger-backend/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var manila = time.FixedZone("PHT", 8*60*60)

// fixedNow is 2026-10-15 10:00 in Manila.
var fixedNow = time.Date(2026, 10, 15, 10, 0, 0, 0, manila)

type ledger struct {
	store   *memory.Store
	loans   service.LoanService
	records service.RecordService
	leader  domain.Actor
	member  domain.Actor
}

func ledgerOptions() service.LedgerOptions {
	return service.LedgerOptions{
		Location:       manila,
		CurrencySymbol: "₱",
		Now:            func() time.Time { return fixedNow },
	}
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	store := memory.NewStore()
	return newLedgerWith(t, store, store)
}

// newLedgerWith seeds users in seed and runs the services against txStore.
func newLedgerWith(t *testing.T, seed *memory.Store, txStore repository.TxStore) *ledger {
	t.Helper()
	ctx := context.Background()
	users := seed.Repos().Users

	leader := &domain.User{FullName: "Lorna Leader", PhoneNumber: "09170000000", Role: domain.RoleLeader}
	require.NoError(t, users.Create(ctx, leader))
	member := &domain.User{FullName: "Maria Santos", PhoneNumber: "09170000001", Role: domain.RoleMember}
	require.NoError(t, users.Create(ctx, member))

	notifier := service.NewNotifier(seed.Repos().Notifications)
	return &ledger{
		store:   seed,
		loans:   service.NewLoanService(txStore, notifier, ledgerOptions()),
		records: service.NewRecordService(txStore, notifier, ledgerOptions()),
		leader:  domain.Actor{UserID: leader.ID, Role: domain.RoleLeader},
		member:  domain.Actor{UserID: member.ID, Role: domain.RoleMember},
	}
}

func (l *ledger) createLoan(t *testing.T, total int64) *domain.Loan {
	t.Helper()
	loan, err := l.loans.CreateLoan(context.Background(), l.leader, l.member.UserID, decimal.NewFromInt(total), "Home Repair")
	require.NoError(t, err)
	return loan
}

func (l *ledger) assign(t *testing.T, recordType domain.RecordType, amount int64, due string) *domain.FinancialRecord {
	t.Helper()
	dueDate, err := time.Parse("2006-01-02", due)
	require.NoError(t, err)
	rec, err := l.records.AssignRecord(context.Background(), l.leader, service.AssignRecordInput{
		UserID:  l.member.UserID,
		Type:    recordType,
		Amount:  decimal.NewFromInt(amount),
		DueDate: dueDate,
	})
	require.NoError(t, err)
	return rec
}

func (l *ledger) loan(t *testing.T, id int32) *domain.Loan {
	t.Helper()
	loan, err := l.store.Repos().Loans.GetByID(context.Background(), id)
	require.NoError(t, err)
	return loan
}

func (l *ledger) record(t *testing.T, id int32) *domain.FinancialRecord {
	t.Helper()
	rec, err := l.store.Repos().Records.GetByID(context.Background(), id)
	require.NoError(t, err)
	return rec
}

func (l *ledger) messages(t *testing.T, userID int32) []string {
	t.Helper()
	notes, err := l.store.Repos().Notifications.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Message)
	}
	return out
}

var errInjected = errors.New("injected failure")

// failingStore runs transactions on the memory store but makes every loan
// balance adjustment fail.
type failingStore struct {
	*memory.Store
}

func (s failingStore) WithTx(ctx context.Context, fn func(repository.Repositories) error) error {
	return s.Store.WithTx(ctx, func(repos repository.Repositories) error {
		repos.Loans = failingLoans{repos.Loans}
		return fn(repos)
	})
}

type failingLoans struct {
	repository.LoanRepository
}

func (failingLoans) AdjustBalance(context.Context, int32, decimal.Decimal, domain.BalanceDirection) error {
	return errInjected
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepo) ListByUser(ctx context.Context, userID int32) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) UpdatePassword(ctx context.Context, id int32, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepo) UpdatePhone(ctx context.Context, id int32, phone string) error {
	args := m.Called(ctx, id, phone)
	return args.Error(0)
}

func (m *MockUserRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepo) ListMembers(ctx context.Context) ([]domain.MemberSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MemberSummary), args.Error(1)
}
