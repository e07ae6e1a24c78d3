package service

import (
	"context"
	"fmt"
	"time"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/logger"
	"cluster-ledger-backend/internal/metrics"
	"cluster-ledger-backend/internal/repository"
	"cluster-ledger-backend/internal/utils"
)

type recordService struct {
	store    repository.TxStore
	notifier Notifier
	opts     LedgerOptions
}

func NewRecordService(store repository.TxStore, notifier Notifier, opts LedgerOptions) RecordService {
	return &recordService{
		store:    store,
		notifier: notifier,
		opts:     opts.withDefaults(),
	}
}

func (s *recordService) AssignRecord(ctx context.Context, actor domain.Actor, input AssignRecordInput) (*domain.FinancialRecord, error) {
	logger.EnterMethod("recordService.AssignRecord", "actorID", actor.UserID, "userID", input.UserID, "type", input.Type)

	rec, member, err := s.assignRecord(ctx, actor, input)
	metrics.ObserveOperation("assign_record", err)
	if err != nil {
		logger.ExitMethodWithError("recordService.AssignRecord", err, "userID", input.UserID)
		return nil, err
	}

	typeText := rec.Type.Label()
	amountText := utils.FormatAmount(s.opts.CurrencySymbol, rec.Amount)
	s.notifier.Notify(ctx, rec.UserID, fmt.Sprintf("Reminder: %s of %s is due on %s", typeText, amountText, utils.FormatDate(rec.DueDate)))
	s.notifier.Notify(ctx, actor.UserID, fmt.Sprintf("You assigned a %s (%s) to %s", typeText, amountText, member.DisplayName()))

	logger.ExitMethod("recordService.AssignRecord", "recordID", rec.ID, "loanID", rec.LoanID)
	return rec, nil
}

func (s *recordService) assignRecord(ctx context.Context, actor domain.Actor, input AssignRecordInput) (*domain.FinancialRecord, *domain.User, error) {
	if err := actor.RequireLeader("assign record"); err != nil {
		return nil, nil, err
	}
	if !input.Type.Assignable() {
		return nil, nil, &domain.ValidationError{Field: "type", Reason: fmt.Sprintf("%q cannot be assigned", input.Type)}
	}
	if !input.Amount.IsPositive() {
		return nil, nil, &domain.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if input.DueDate.IsZero() {
		return nil, nil, &domain.ValidationError{Field: "due_date", Reason: "is required"}
	}

	var (
		rec    *domain.FinancialRecord
		member *domain.User
	)
	err := s.store.WithTx(ctx, func(tx repository.Repositories) error {
		user, err := tx.Users.GetByID(ctx, input.UserID)
		if err != nil {
			return err
		}

		r := &domain.FinancialRecord{
			UserID:  input.UserID,
			Type:    input.Type,
			Amount:  input.Amount,
			DueDate: utils.CalendarDay(input.DueDate, time.UTC),
			Status:  domain.RecordStatusPending,
		}
		if input.Type == domain.RecordTypeLoanPayment {
			loan, err := s.paymentLoan(ctx, tx.Loans, input)
			if err != nil {
				return err
			}
			if loan != nil {
				r.LoanID = &loan.ID
				r.LoanName = &loan.LoanName
			}
		}

		if err := tx.Records.Create(ctx, r); err != nil {
			return err
		}
		rec, member = r, user
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return rec, member, nil
}

// paymentLoan resolves the loan a new payment links to: the requested loan,
// or else the member's active loan. A nil loan leaves the payment unlinked.
func (s *recordService) paymentLoan(ctx context.Context, loans repository.LoanRepository, input AssignRecordInput) (*domain.Loan, error) {
	if input.LoanID == nil {
		return loans.FindActiveByUser(ctx, input.UserID)
	}
	loan, err := loans.GetByID(ctx, *input.LoanID)
	if err != nil {
		return nil, err
	}
	if loan.UserID != input.UserID {
		return nil, domain.NewNotFoundError("loan", *input.LoanID)
	}
	if !loan.IsActive() {
		return nil, &domain.ConflictError{Reason: fmt.Sprintf("loan %d is completed and accepts no new payments", loan.ID)}
	}
	return loan, nil
}

func (s *recordService) Settle(ctx context.Context, actor domain.Actor, recordID int32) (domain.RecordStatus, error) {
	logger.EnterMethod("recordService.Settle", "actorID", actor.UserID, "recordID", recordID)

	status, err := s.settle(ctx, actor, recordID)
	metrics.ObserveOperation("settle", err)
	if err != nil {
		logger.ExitMethodWithError("recordService.Settle", err, "recordID", recordID)
		return "", err
	}

	logger.ExitMethod("recordService.Settle", "recordID", recordID, "status", status)
	return status, nil
}

func (s *recordService) settle(ctx context.Context, actor domain.Actor, recordID int32) (domain.RecordStatus, error) {
	if err := actor.RequireLeader("settle record"); err != nil {
		return "", err
	}

	var status domain.RecordStatus
	err := s.store.WithTx(ctx, func(tx repository.Repositories) error {
		rec, err := tx.Records.GetByID(ctx, recordID)
		if err != nil {
			return err
		}
		if rec.Status.IsSettled() || rec.Status == domain.RecordStatusCancelled {
			return &domain.AlreadySettledError{RecordID: rec.ID, Status: rec.Status}
		}

		now := s.opts.Now()
		status = domain.RecordStatusPaid
		if utils.IsPastDue(rec.DueDate, now, s.opts.Location) {
			status = domain.RecordStatusLate
		}
		if err := tx.Records.UpdateStatus(ctx, rec.ID, status, &now); err != nil {
			return err
		}

		if rec.Type == domain.RecordTypeLoanPayment && rec.LoanID != nil {
			return applyPayment(ctx, tx.Loans, *rec.LoanID, rec.Amount)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return status, nil
}

func (s *recordService) Reset(ctx context.Context, actor domain.Actor, recordID int32) error {
	logger.EnterMethod("recordService.Reset", "actorID", actor.UserID, "recordID", recordID)

	err := s.reset(ctx, actor, recordID)
	metrics.ObserveOperation("reset", err)
	if err != nil {
		logger.ExitMethodWithError("recordService.Reset", err, "recordID", recordID)
		return err
	}

	logger.ExitMethod("recordService.Reset", "recordID", recordID)
	return nil
}

func (s *recordService) reset(ctx context.Context, actor domain.Actor, recordID int32) error {
	if err := actor.RequireLeader("reset record"); err != nil {
		return err
	}

	return s.store.WithTx(ctx, func(tx repository.Repositories) error {
		rec, err := tx.Records.GetByID(ctx, recordID)
		if err != nil {
			return err
		}
		if rec.Status == domain.RecordStatusCancelled {
			return &domain.ConflictError{Reason: fmt.Sprintf("record %d is a cancelled loan entry and cannot be reset", rec.ID)}
		}
		if rec.AffectsLoan() {
			if err := reversePayment(ctx, tx.Loans, *rec.LoanID, rec.Amount); err != nil {
				return err
			}
		}
		return tx.Records.UpdateStatus(ctx, rec.ID, domain.RecordStatusPending, nil)
	})
}

func (s *recordService) Delete(ctx context.Context, actor domain.Actor, recordID int32) error {
	logger.EnterMethod("recordService.Delete", "actorID", actor.UserID, "recordID", recordID)

	err := s.delete(ctx, actor, recordID)
	metrics.ObserveOperation("delete_record", err)
	if err != nil {
		logger.ExitMethodWithError("recordService.Delete", err, "recordID", recordID)
		return err
	}

	logger.ExitMethod("recordService.Delete", "recordID", recordID)
	return nil
}

func (s *recordService) delete(ctx context.Context, actor domain.Actor, recordID int32) error {
	if err := actor.RequireLeader("delete record"); err != nil {
		return err
	}

	return s.store.WithTx(ctx, func(tx repository.Repositories) error {
		rec, err := tx.Records.GetByID(ctx, recordID)
		if err != nil {
			return err
		}
		if rec.AffectsLoan() {
			if err := reversePayment(ctx, tx.Loans, *rec.LoanID, rec.Amount); err != nil {
				return err
			}
		}
		return tx.Records.Delete(ctx, rec.ID)
	})
}

func (s *recordService) CashOut(ctx context.Context, actor domain.Actor, userID int32, recordType domain.RecordType) (int64, error) {
	logger.EnterMethod("recordService.CashOut", "actorID", actor.UserID, "userID", userID, "type", recordType)

	n, err := s.transition(ctx, actor, "cash out", userID, recordType, domain.RealizedStatuses, domain.RecordStatusCashedOut)
	metrics.ObserveOperation("cash_out", err)
	if err != nil {
		logger.ExitMethodWithError("recordService.CashOut", err, "userID", userID)
		return 0, err
	}

	logger.ExitMethod("recordService.CashOut", "userID", userID, "affected", n)
	return n, nil
}

// UndoCashOut restores cashed out records as paid; whether a record was
// originally late is not kept.
func (s *recordService) UndoCashOut(ctx context.Context, actor domain.Actor, userID int32, recordType domain.RecordType) (int64, error) {
	logger.EnterMethod("recordService.UndoCashOut", "actorID", actor.UserID, "userID", userID, "type", recordType)

	from := []domain.RecordStatus{domain.RecordStatusCashedOut}
	n, err := s.transition(ctx, actor, "undo cash out", userID, recordType, from, domain.RecordStatusPaid)
	metrics.ObserveOperation("undo_cash_out", err)
	if err != nil {
		logger.ExitMethodWithError("recordService.UndoCashOut", err, "userID", userID)
		return 0, err
	}

	logger.ExitMethod("recordService.UndoCashOut", "userID", userID, "affected", n)
	return n, nil
}

func (s *recordService) transition(ctx context.Context, actor domain.Actor, action string, userID int32, recordType domain.RecordType, from []domain.RecordStatus, to domain.RecordStatus) (int64, error) {
	if err := actor.RequireLeader(action); err != nil {
		return 0, err
	}
	if !recordType.CashOutable() {
		return 0, &domain.ValidationError{Field: "type", Reason: "must be savings or insurance"}
	}

	var affected int64
	err := s.store.WithTx(ctx, func(tx repository.Repositories) error {
		if _, err := tx.Users.GetByID(ctx, userID); err != nil {
			return err
		}
		n, err := tx.Records.TransitionAll(ctx, userID, recordType, from, to)
		if err != nil {
			return err
		}
		affected = n
		return nil
	})
	return affected, err
}

func (s *recordService) Totals(ctx context.Context, actor domain.Actor, userID int32) (*domain.Totals, error) {
	if err := actor.RequireViewer("view totals", userID); err != nil {
		return nil, err
	}
	return computeTotals(ctx, s.store.Repos().Records, userID)
}

func computeTotals(ctx context.Context, records repository.RecordRepository, userID int32) (*domain.Totals, error) {
	savings, err := records.SumAmount(ctx, userID, domain.RecordTypeSavings, domain.RealizedStatuses)
	if err != nil {
		return nil, err
	}
	insurance, err := records.SumAmount(ctx, userID, domain.RecordTypeInsurance, domain.RealizedStatuses)
	if err != nil {
		return nil, err
	}
	return &domain.Totals{Savings: savings, Insurance: insurance}, nil
}

func (s *recordService) ListRecords(ctx context.Context, actor domain.Actor, userID int32) ([]domain.FinancialRecord, error) {
	if err := actor.RequireViewer("list records", userID); err != nil {
		return nil, err
	}
	return s.store.Repos().Records.ListByUser(ctx, userID)
}
