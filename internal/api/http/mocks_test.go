package http_test

import (
	"context"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Login(ctx context.Context, phone, password string) (string, *domain.User, error) {
	args := m.Called(ctx, phone, password)
	user, _ := args.Get(1).(*domain.User)
	return args.String(0), user, args.Error(2)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, actor domain.Actor, newPassword string) error {
	return m.Called(ctx, actor, newPassword).Error(0)
}

func (m *MockAuthService) ChangePhone(ctx context.Context, actor domain.Actor, newPhone string) error {
	return m.Called(ctx, actor, newPhone).Error(0)
}

type MockMemberService struct{ mock.Mock }

func (m *MockMemberService) AddMember(ctx context.Context, actor domain.Actor, input service.MemberInput, image *service.ImageUpload) (*domain.User, error) {
	args := m.Called(ctx, actor, input, image)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockMemberService) GetProfile(ctx context.Context, actor domain.Actor, userID int32) (*domain.User, error) {
	args := m.Called(ctx, actor, userID)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockMemberService) ListMembers(ctx context.Context, actor domain.Actor) ([]domain.MemberSummary, error) {
	args := m.Called(ctx, actor)
	members, _ := args.Get(0).([]domain.MemberSummary)
	return members, args.Error(1)
}

func (m *MockMemberService) UpdateMember(ctx context.Context, actor domain.Actor, userID int32, update service.MemberUpdate) (*domain.User, error) {
	args := m.Called(ctx, actor, userID, update)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockMemberService) DeleteMember(ctx context.Context, actor domain.Actor, userID int32) error {
	return m.Called(ctx, actor, userID).Error(0)
}

func (m *MockMemberService) GetMemberDetails(ctx context.Context, actor domain.Actor, userID int32) (*domain.MemberDetails, error) {
	args := m.Called(ctx, actor, userID)
	details, _ := args.Get(0).(*domain.MemberDetails)
	return details, args.Error(1)
}

type MockLoanService struct{ mock.Mock }

func (m *MockLoanService) CreateLoan(ctx context.Context, actor domain.Actor, userID int32, amount decimal.Decimal, name string) (*domain.Loan, error) {
	args := m.Called(ctx, actor, userID, amount, name)
	loan, _ := args.Get(0).(*domain.Loan)
	return loan, args.Error(1)
}

func (m *MockLoanService) CancelLoan(ctx context.Context, actor domain.Actor, loanID int32) error {
	return m.Called(ctx, actor, loanID).Error(0)
}

type MockRecordService struct{ mock.Mock }

func (m *MockRecordService) AssignRecord(ctx context.Context, actor domain.Actor, input service.AssignRecordInput) (*domain.FinancialRecord, error) {
	args := m.Called(ctx, actor, input)
	rec, _ := args.Get(0).(*domain.FinancialRecord)
	return rec, args.Error(1)
}

func (m *MockRecordService) Settle(ctx context.Context, actor domain.Actor, recordID int32) (domain.RecordStatus, error) {
	args := m.Called(ctx, actor, recordID)
	return args.Get(0).(domain.RecordStatus), args.Error(1)
}

func (m *MockRecordService) Reset(ctx context.Context, actor domain.Actor, recordID int32) error {
	return m.Called(ctx, actor, recordID).Error(0)
}

func (m *MockRecordService) Delete(ctx context.Context, actor domain.Actor, recordID int32) error {
	return m.Called(ctx, actor, recordID).Error(0)
}

func (m *MockRecordService) CashOut(ctx context.Context, actor domain.Actor, userID int32, recordType domain.RecordType) (int64, error) {
	args := m.Called(ctx, actor, userID, recordType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordService) UndoCashOut(ctx context.Context, actor domain.Actor, userID int32, recordType domain.RecordType) (int64, error) {
	args := m.Called(ctx, actor, userID, recordType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordService) Totals(ctx context.Context, actor domain.Actor, userID int32) (*domain.Totals, error) {
	args := m.Called(ctx, actor, userID)
	totals, _ := args.Get(0).(*domain.Totals)
	return totals, args.Error(1)
}

func (m *MockRecordService) ListRecords(ctx context.Context, actor domain.Actor, userID int32) ([]domain.FinancialRecord, error) {
	args := m.Called(ctx, actor, userID)
	records, _ := args.Get(0).([]domain.FinancialRecord)
	return records, args.Error(1)
}

type MockNotificationService struct{ mock.Mock }

func (m *MockNotificationService) List(ctx context.Context, actor domain.Actor, userID int32) ([]domain.Notification, error) {
	args := m.Called(ctx, actor, userID)
	notes, _ := args.Get(0).([]domain.Notification)
	return notes, args.Error(1)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, actor domain.Actor, notificationID int32) error {
	return m.Called(ctx, actor, notificationID).Error(0)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }
