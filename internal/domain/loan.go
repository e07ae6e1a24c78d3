package domain

import "github.com/shopspring/decimal"

type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "active"
	LoanStatusCompleted LoanStatus = "completed"
)

const DefaultLoanName = "Personal Loan"

type Loan struct {
	ID             int32           `json:"id"`
	UserID         int32           `json:"user_id"`
	LoanName       string          `json:"loan_name"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Status         LoanStatus      `json:"status"`
	CreatedOn      string          `json:"created_on"`
}

func (l *Loan) IsActive() bool {
	return l.Status == LoanStatusActive
}

// BalanceDirection says which way a payment moves a loan balance.
type BalanceDirection string

const (
	// Debit realizes a payment and lowers the balance.
	Debit BalanceDirection = "debit"
	// Credit reverses a payment and raises the balance.
	Credit BalanceDirection = "credit"
)
