package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/logger"
	"cluster-ledger-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type loanRepository struct {
	db DBTX
}

func NewLoanRepository(db DBTX) repository.LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, user_id, loan_name, total_amount, current_balance, status, created_on`

func scanLoan(row interface{ Scan(...any) error }) (*domain.Loan, error) {
	l := &domain.Loan{}
	var createdOn time.Time
	if err := row.Scan(&l.ID, &l.UserID, &l.LoanName, &l.TotalAmount, &l.CurrentBalance, &l.Status, &createdOn); err != nil {
		return nil, err
	}
	l.CreatedOn = createdOn.Format("2006-01-02")
	return l, nil
}

func (r *loanRepository) Create(ctx context.Context, l *domain.Loan) error {
	logger.EnterMethod("loanRepository.Create", "userID", l.UserID, "amount", l.TotalAmount)

	query := `INSERT INTO loans (user_id, loan_name, total_amount, current_balance, status, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	logger.DatabaseCall("INSERT", "loans", "userID", l.UserID)

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, l.UserID, l.LoanName, l.TotalAmount, l.CurrentBalance, l.Status, now).Scan(&l.ID)
	logger.DatabaseResult("INSERT", 1, err, "loanID", l.ID)
	if err != nil {
		logger.ExitMethodWithError("loanRepository.Create", err)
		return wrapErr("create loan", "loan", l.UserID, err)
	}
	l.CreatedOn = now.Format("2006-01-02")

	logger.ExitMethod("loanRepository.Create", "loanID", l.ID)
	return nil
}

func (r *loanRepository) GetByID(ctx context.Context, id int32) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	logger.DatabaseCall("SELECT", "loans", "loanID", id)
	l, err := scanLoan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapErr("get loan", "loan", id, err)
	}
	return l, nil
}

func (r *loanRepository) FindActiveByUser(ctx context.Context, userID int32) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE user_id = $1 AND status = 'active' ORDER BY id LIMIT 1`
	logger.DatabaseCall("SELECT", "loans", "userID", userID, "status", domain.LoanStatusActive)
	l, err := scanLoan(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStoreError("find active loan", err)
	}
	return l, nil
}

func (r *loanRepository) AdjustBalance(ctx context.Context, id int32, amount decimal.Decimal, direction domain.BalanceDirection) error {
	query := `UPDATE loans SET current_balance = current_balance - $1 WHERE id = $2`
	if direction == domain.Credit {
		query = `UPDATE loans SET current_balance = current_balance + $1 WHERE id = $2`
	}
	logger.DatabaseCall("UPDATE", "loans", "loanID", id, "amount", amount, "direction", direction)

	res, err := r.db.ExecContext(ctx, query, amount, id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "loanID", id)
		return domain.NewStoreError("adjust loan balance", err)
	}
	return requireAffected("adjust loan balance", "loan", id, res)
}

func (r *loanRepository) CloseIfSettled(ctx context.Context, id int32) error {
	query := `UPDATE loans SET status = 'completed' WHERE id = $1 AND current_balance <= 0`
	logger.DatabaseCall("UPDATE", "loans", "loanID", id, "op", "close_if_settled")
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return domain.NewStoreError("close loan", err)
	}
	return nil
}

func (r *loanRepository) ReactivateIfNeeded(ctx context.Context, id int32) error {
	query := `UPDATE loans SET status = CASE WHEN current_balance > 0 THEN 'active' ELSE 'completed' END WHERE id = $1`
	logger.DatabaseCall("UPDATE", "loans", "loanID", id, "op", "reactivate_if_needed")
	// loans_one_active_per_user rejects reopening while another loan is active.
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return wrapErr("reactivate loan", "loan", id, err)
	}
	return nil
}

func (r *loanRepository) Delete(ctx context.Context, id int32) error {
	logger.DatabaseCall("DELETE", "loans", "loanID", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM loans WHERE id = $1`, id)
	if err != nil {
		return domain.NewStoreError("delete loan", err)
	}
	return requireAffected("delete loan", "loan", id, res)
}
