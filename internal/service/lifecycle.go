package service

import (
	"context"
	"errors"
	"fmt"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// applyPayment debits a realized payment from its loan and closes the loan
// once nothing is owed.
func applyPayment(ctx context.Context, loans repository.LoanRepository, loanID int32, amount decimal.Decimal) error {
	if err := loans.AdjustBalance(ctx, loanID, amount, domain.Debit); err != nil {
		return fmt.Errorf("failed to debit loan %d: %w", loanID, err)
	}
	if err := loans.CloseIfSettled(ctx, loanID); err != nil {
		return fmt.Errorf("failed to close loan %d: %w", loanID, err)
	}
	return nil
}

// reversePayment credits a payment back to its loan and reopens the loan if
// a balance remains. A completed loan is not reopened while its owner has
// another active loan; the caller's transaction must roll back.
func reversePayment(ctx context.Context, loans repository.LoanRepository, loanID int32, amount decimal.Decimal) error {
	if err := loans.AdjustBalance(ctx, loanID, amount, domain.Credit); err != nil {
		return fmt.Errorf("failed to credit loan %d: %w", loanID, err)
	}
	if err := loans.ReactivateIfNeeded(ctx, loanID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return &domain.ConflictError{Reason: fmt.Sprintf("loan %d cannot be reopened while another loan is active", loanID)}
		}
		return fmt.Errorf("failed to reactivate loan %d: %w", loanID, err)
	}
	return nil
}
