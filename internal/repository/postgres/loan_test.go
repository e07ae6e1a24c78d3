package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var loanCols = []string{"id", "user_id", "loan_name", "total_amount", "current_balance", "status", "created_on"}

func TestLoanRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLoanRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		loan := &domain.Loan{
			UserID:         2,
			LoanName:       "Personal Loan",
			TotalAmount:    decimal.NewFromInt(1000),
			CurrentBalance: decimal.NewFromInt(1000),
			Status:         domain.LoanStatusActive,
		}

		mock.ExpectQuery("INSERT INTO loans").
			WithArgs(loan.UserID, loan.LoanName, loan.TotalAmount, loan.CurrentBalance, loan.Status, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

		err := repo.Create(ctx, loan)
		assert.NoError(t, err)
		assert.Equal(t, int32(11), loan.ID)
		assert.NotEmpty(t, loan.CreatedOn)
	})

	t.Run("Driver failure", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO loans").WillReturnError(errors.New("boom"))

		err := repo.Create(ctx, &domain.Loan{UserID: 2, TotalAmount: decimal.NewFromInt(10), CurrentBalance: decimal.NewFromInt(10)})
		assert.ErrorIs(t, err, domain.ErrStore)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLoanRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM loans WHERE id = \\$1").
			WithArgs(int32(11)).
			WillReturnRows(sqlmock.NewRows(loanCols).AddRow(11, 2, "Home", "1000.00", "600.00", "active", time.Now()))

		loan, err := repo.GetByID(ctx, 11)
		assert.NoError(t, err)
		assert.Equal(t, "Home", loan.LoanName)
		assert.True(t, decimal.NewFromInt(600).Equal(loan.CurrentBalance))
		assert.Equal(t, domain.LoanStatusActive, loan.Status)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM loans WHERE id = \\$1").
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows(loanCols))

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestLoanRepository_FindActiveByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLoanRepository(db)
	ctx := context.Background()

	t.Run("None", func(t *testing.T) {
		mock.ExpectQuery("FROM loans WHERE user_id = \\$1 AND status = 'active'").
			WithArgs(int32(2)).
			WillReturnRows(sqlmock.NewRows(loanCols))

		loan, err := repo.FindActiveByUser(ctx, 2)
		assert.NoError(t, err)
		assert.Nil(t, loan)
	})

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery("FROM loans WHERE user_id = \\$1 AND status = 'active'").
			WithArgs(int32(2)).
			WillReturnRows(sqlmock.NewRows(loanCols).AddRow(3, 2, "Personal Loan", "500", "500", "active", time.Now()))

		loan, err := repo.FindActiveByUser(ctx, 2)
		assert.NoError(t, err)
		assert.Equal(t, int32(3), loan.ID)
	})
}

func TestLoanRepository_AdjustBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLoanRepository(db)
	ctx := context.Background()
	amount := decimal.NewFromInt(400)

	t.Run("Debit", func(t *testing.T) {
		mock.ExpectExec("UPDATE loans SET current_balance = current_balance - \\$1 WHERE id = \\$2").
			WithArgs(amount, int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.AdjustBalance(ctx, 3, amount, domain.Debit))
	})

	t.Run("Credit", func(t *testing.T) {
		mock.ExpectExec("UPDATE loans SET current_balance = current_balance \\+ \\$1 WHERE id = \\$2").
			WithArgs(amount, int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.AdjustBalance(ctx, 3, amount, domain.Credit))
	})

	t.Run("Missing loan", func(t *testing.T) {
		mock.ExpectExec("UPDATE loans SET current_balance").
			WithArgs(amount, int32(4)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.AdjustBalance(ctx, 4, amount, domain.Debit)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepository_StatusRules(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLoanRepository(db)
	ctx := context.Background()

	t.Run("CloseIfSettled", func(t *testing.T) {
		mock.ExpectExec("UPDATE loans SET status = 'completed' WHERE id = \\$1 AND current_balance <= 0").
			WithArgs(int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.CloseIfSettled(ctx, 3))
	})

	t.Run("ReactivateIfNeeded", func(t *testing.T) {
		mock.ExpectExec("UPDATE loans SET status = CASE WHEN current_balance > 0 THEN 'active' ELSE 'completed' END").
			WithArgs(int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.ReactivateIfNeeded(ctx, 3))
	})

	t.Run("ReactivateIfNeeded with another active loan", func(t *testing.T) {
		mock.ExpectExec("UPDATE loans SET status = CASE").
			WithArgs(int32(3)).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "loans_one_active_per_user"})

		err := repo.ReactivateIfNeeded(ctx, 3)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.NotErrorIs(t, err, domain.ErrStore)
	})

	t.Run("Delete", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM loans WHERE id = \\$1").
			WithArgs(int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, 3))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
