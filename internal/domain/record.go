package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RecordType string

const (
	RecordTypeSavings     RecordType = "savings"
	RecordTypeInsurance   RecordType = "insurance"
	RecordTypeLoanPayment RecordType = "loan_payment"
	RecordTypeCancelled   RecordType = "cancelled"
)

// Assignable reports whether a leader may create records of this type directly.
func (t RecordType) Assignable() bool {
	switch t {
	case RecordTypeSavings, RecordTypeInsurance, RecordTypeLoanPayment:
		return true
	}
	return false
}

// CashOutable reports whether the type accumulates a cash-out total.
func (t RecordType) CashOutable() bool {
	return t == RecordTypeSavings || t == RecordTypeInsurance
}

// Label is the human readable name used in notifications.
func (t RecordType) Label() string {
	switch t {
	case RecordTypeLoanPayment:
		return "Loan Payment"
	case RecordTypeSavings:
		return "Savings"
	case RecordTypeInsurance:
		return "Insurance"
	case RecordTypeCancelled:
		return "Cancelled Loan"
	}
	return string(t)
}

type RecordStatus string

const (
	RecordStatusPending   RecordStatus = "pending"
	RecordStatusPaid      RecordStatus = "paid"
	RecordStatusLate      RecordStatus = "late"
	RecordStatusCashedOut RecordStatus = "cashed_out"
	RecordStatusCancelled RecordStatus = "cancelled"
)

// RealizedStatuses are the statuses that count toward savings and insurance totals.
var RealizedStatuses = []RecordStatus{RecordStatusPaid, RecordStatusLate}

// IsSettled reports whether the record has already been paid out in some form.
// A cashed_out record was settled before it was archived.
func (s RecordStatus) IsSettled() bool {
	return s == RecordStatusPaid || s == RecordStatusLate || s == RecordStatusCashedOut
}

type FinancialRecord struct {
	ID           int32           `json:"id"`
	UserID       int32           `json:"user_id"`
	Type         RecordType      `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	DueDate      time.Time       `json:"due_date"`
	Status       RecordStatus    `json:"status"`
	LoanID       *int32          `json:"loan_id"`
	LoanName     *string         `json:"loan_name,omitempty"`
	Note         string          `json:"note,omitempty"`
	DateRecorded *time.Time      `json:"date_recorded"`
}

// AffectsLoan reports whether reversing this record must credit its loan.
func (r *FinancialRecord) AffectsLoan() bool {
	return r.Type == RecordTypeLoanPayment && r.LoanID != nil && r.Status.IsSettled()
}

// Totals are the realized savings and insurance sums of one member.
type Totals struct {
	Savings   decimal.Decimal `json:"savings"`
	Insurance decimal.Decimal `json:"insurance"`
}
