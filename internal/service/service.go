package service

import (
	"context"
	"io"
	"time"

	"cluster-ledger-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type AuthService interface {
	Login(ctx context.Context, phone, password string) (string, *domain.User, error) // token, user
	ChangePassword(ctx context.Context, actor domain.Actor, newPassword string) error
	ChangePhone(ctx context.Context, actor domain.Actor, newPhone string) error
}

type MemberService interface {
	AddMember(ctx context.Context, actor domain.Actor, input MemberInput, image *ImageUpload) (*domain.User, error)
	GetProfile(ctx context.Context, actor domain.Actor, userID int32) (*domain.User, error)
	ListMembers(ctx context.Context, actor domain.Actor) ([]domain.MemberSummary, error)
	UpdateMember(ctx context.Context, actor domain.Actor, userID int32, update MemberUpdate) (*domain.User, error)
	DeleteMember(ctx context.Context, actor domain.Actor, userID int32) error
	GetMemberDetails(ctx context.Context, actor domain.Actor, userID int32) (*domain.MemberDetails, error)
}

type LoanService interface {
	CreateLoan(ctx context.Context, actor domain.Actor, userID int32, amount decimal.Decimal, name string) (*domain.Loan, error)
	CancelLoan(ctx context.Context, actor domain.Actor, loanID int32) error
}

type RecordService interface {
	AssignRecord(ctx context.Context, actor domain.Actor, input AssignRecordInput) (*domain.FinancialRecord, error)
	Settle(ctx context.Context, actor domain.Actor, recordID int32) (domain.RecordStatus, error)
	Reset(ctx context.Context, actor domain.Actor, recordID int32) error
	Delete(ctx context.Context, actor domain.Actor, recordID int32) error
	CashOut(ctx context.Context, actor domain.Actor, userID int32, recordType domain.RecordType) (int64, error)
	UndoCashOut(ctx context.Context, actor domain.Actor, userID int32, recordType domain.RecordType) (int64, error)
	Totals(ctx context.Context, actor domain.Actor, userID int32) (*domain.Totals, error)
	ListRecords(ctx context.Context, actor domain.Actor, userID int32) ([]domain.FinancialRecord, error)
}

type NotificationService interface {
	List(ctx context.Context, actor domain.Actor, userID int32) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, actor domain.Actor, notificationID int32) error
}

// Notifier appends in-app notifications. It never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, userID int32, message string)
}

// MemberInput carries the fields of a new member.
type MemberInput struct {
	FullName    string
	PhoneNumber string
	Password    string
	Birthdate   *string
	SpouseName  *string
}

// MemberUpdate carries the fields a leader may change; nil fields are kept.
type MemberUpdate struct {
	FullName    *string
	PhoneNumber *string
	Birthdate   *string
	SpouseName  *string
}

// ImageUpload is a profile picture attached to AddMember.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// AssignRecordInput describes a new pending record.
type AssignRecordInput struct {
	UserID  int32
	Type    domain.RecordType
	Amount  decimal.Decimal
	DueDate time.Time
	LoanID  *int32
}

// LedgerOptions controls how dates and amounts are interpreted.
type LedgerOptions struct {
	// Location decides which calendar day "today" is when settling.
	Location       *time.Location
	CurrencySymbol string
	Now            func() time.Time
}

func (o LedgerOptions) withDefaults() LedgerOptions {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.CurrencySymbol == "" {
		o.CurrencySymbol = "₱"
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
