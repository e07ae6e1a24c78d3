package domain

import "github.com/shopspring/decimal"

type Role string

const (
	RoleLeader Role = "leader"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	return r == RoleLeader || r == RoleMember
}

type User struct {
	ID             int32   `json:"id"`
	FullName       string  `json:"full_name"`
	PhoneNumber    string  `json:"phone_number"`
	PasswordHash   string  `json:"-"`
	Role           Role    `json:"role"`
	Birthdate      *string `json:"birthdate,omitempty"`
	SpouseName     *string `json:"spouse_name,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	CreatedOn      string  `json:"created_on"`
}

// Redacted returns a copy safe to hand to clients. Leaders never expose
// their personal details.
func (u *User) Redacted() *User {
	if u == nil {
		return nil
	}
	c := *u
	if c.Role == RoleLeader {
		c.Birthdate = nil
		c.SpouseName = nil
		c.ProfilePicture = nil
	}
	return &c
}

// DisplayName is the name used in notification text.
func (u *User) DisplayName() string {
	if u == nil || u.FullName == "" {
		return "Member"
	}
	return u.FullName
}

// MemberSummary is one row of the leader's member list.
type MemberSummary struct {
	ID             int32            `json:"id"`
	FullName       string           `json:"full_name"`
	PhoneNumber    string           `json:"phone_number"`
	ProfilePicture *string          `json:"profile_picture,omitempty"`
	LoanName       *string          `json:"loan_name"`
	TotalAmount    *decimal.Decimal `json:"total_amount"`
	CurrentBalance *decimal.Decimal `json:"current_balance"`
	LateCount      int32            `json:"late_count"`
}

// MemberDetails aggregates everything the member dashboard shows.
type MemberDetails struct {
	User           *User             `json:"user"`
	ActiveLoan     *Loan             `json:"active_loan"`
	Records        []FinancialRecord `json:"records"`
	Notifications  []Notification    `json:"notifications"`
	SavingsTotal   decimal.Decimal   `json:"savings_total"`
	InsuranceTotal decimal.Decimal   `json:"insurance_total"`
}
