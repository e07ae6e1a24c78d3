package service

import (
	"context"
	"fmt"
	"strings"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/logger"
	"cluster-ledger-backend/internal/metrics"
	"cluster-ledger-backend/internal/repository"
	"cluster-ledger-backend/internal/utils"

	"github.com/shopspring/decimal"
)

type loanService struct {
	store    repository.TxStore
	notifier Notifier
	opts     LedgerOptions
}

func NewLoanService(store repository.TxStore, notifier Notifier, opts LedgerOptions) LoanService {
	return &loanService{
		store:    store,
		notifier: notifier,
		opts:     opts.withDefaults(),
	}
}

func (s *loanService) CreateLoan(ctx context.Context, actor domain.Actor, userID int32, amount decimal.Decimal, name string) (*domain.Loan, error) {
	logger.EnterMethod("loanService.CreateLoan", "actorID", actor.UserID, "userID", userID, "amount", amount)

	loan, member, err := s.createLoan(ctx, actor, userID, amount, name)
	metrics.ObserveOperation("create_loan", err)
	if err != nil {
		logger.ExitMethodWithError("loanService.CreateLoan", err, "userID", userID)
		return nil, err
	}

	amountText := utils.FormatAmount(s.opts.CurrencySymbol, loan.TotalAmount)
	s.notifier.Notify(ctx, loan.UserID, fmt.Sprintf("New Loan Assigned: %s - %s", loan.LoanName, amountText))
	s.notifier.Notify(ctx, actor.UserID, fmt.Sprintf("You assigned Loan (%s) to %s", loan.LoanName, member.DisplayName()))

	logger.ExitMethod("loanService.CreateLoan", "loanID", loan.ID)
	return loan, nil
}

func (s *loanService) createLoan(ctx context.Context, actor domain.Actor, userID int32, amount decimal.Decimal, name string) (*domain.Loan, *domain.User, error) {
	if err := actor.RequireLeader("create loan"); err != nil {
		return nil, nil, err
	}
	if !amount.IsPositive() {
		return nil, nil, &domain.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultLoanName
	}

	var (
		loan   *domain.Loan
		member *domain.User
	)
	err := s.store.WithTx(ctx, func(tx repository.Repositories) error {
		user, err := tx.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user.Role != domain.RoleMember {
			return &domain.ValidationError{Field: "user_id", Reason: "loans can only be assigned to members"}
		}

		active, err := tx.Loans.FindActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		if active != nil {
			return &domain.ConflictError{Reason: fmt.Sprintf("user %d already has an active loan", userID)}
		}

		l := &domain.Loan{
			UserID:         userID,
			LoanName:       name,
			TotalAmount:    amount,
			CurrentBalance: amount,
			Status:         domain.LoanStatusActive,
		}
		if err := tx.Loans.Create(ctx, l); err != nil {
			return err
		}
		loan, member = l, user
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return loan, member, nil
}

func (s *loanService) CancelLoan(ctx context.Context, actor domain.Actor, loanID int32) error {
	logger.EnterMethod("loanService.CancelLoan", "actorID", actor.UserID, "loanID", loanID)

	loan, member, err := s.cancelLoan(ctx, actor, loanID)
	metrics.ObserveOperation("cancel_loan", err)
	if err != nil {
		logger.ExitMethodWithError("loanService.CancelLoan", err, "loanID", loanID)
		return err
	}

	s.notifier.Notify(ctx, loan.UserID, fmt.Sprintf("Loan Cancelled: %s has been cancelled by Admin.", loan.LoanName))
	s.notifier.Notify(ctx, actor.UserID, fmt.Sprintf("You cancelled the loan (%s) for %s.", loan.LoanName, member.DisplayName()))

	logger.ExitMethod("loanService.CancelLoan", "loanID", loanID)
	return nil
}

// cancelLoan replaces the loan and its payment history with a single
// cancelled audit record.
func (s *loanService) cancelLoan(ctx context.Context, actor domain.Actor, loanID int32) (*domain.Loan, *domain.User, error) {
	if err := actor.RequireLeader("cancel loan"); err != nil {
		return nil, nil, err
	}

	var (
		loan   *domain.Loan
		member *domain.User
	)
	err := s.store.WithTx(ctx, func(tx repository.Repositories) error {
		l, err := tx.Loans.GetByID(ctx, loanID)
		if err != nil {
			return err
		}
		user, err := tx.Users.GetByID(ctx, l.UserID)
		if err != nil {
			return err
		}

		audit := &domain.FinancialRecord{
			UserID:  l.UserID,
			Type:    domain.RecordTypeCancelled,
			Amount:  l.TotalAmount,
			DueDate: utils.CalendarDay(s.opts.Now(), s.opts.Location),
			Status:  domain.RecordStatusCancelled,
			Note:    "Cancelled: " + l.LoanName,
		}
		if err := tx.Records.Create(ctx, audit); err != nil {
			return err
		}

		removed, err := tx.Records.DeleteByLoan(ctx, l.ID)
		if err != nil {
			return err
		}
		if err := tx.Loans.Delete(ctx, l.ID); err != nil {
			return err
		}
		logger.Info("Loan cancelled", "loanID", l.ID, "userID", l.UserID, "recordsRemoved", removed, "auditRecordID", audit.ID)

		loan, member = l, user
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return loan, member, nil
}
