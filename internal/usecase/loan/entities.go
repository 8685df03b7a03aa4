package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"mortgage-backend/internal/domain/loan"
)

type CreateLoanInput struct {
	LoanType               loan.Type        `json:"loan_type" validate:"required,loantype"`
	LoanAmount             decimal.Decimal  `json:"loan_amount" validate:"gt=0"`
	InterestRate           decimal.Decimal  `json:"interest_rate" validate:"gte=0,lte=100"`
	TermMonths             int              `json:"term_months" validate:"gt=0,lte=600"`
	PropertyValue          *decimal.Decimal `json:"property_value,omitempty" validate:"omitempty,gte=0"`
	PurchasePrice          *decimal.Decimal `json:"purchase_price,omitempty" validate:"omitempty,gte=0"`
	DownPayment            *decimal.Decimal `json:"down_payment,omitempty" validate:"omitempty,gte=0"`
	BorrowerAnnualIncome   *decimal.Decimal `json:"borrower_annual_income,omitempty" validate:"omitempty,gte=0"`
	CoBorrowerAnnualIncome *decimal.Decimal `json:"co_borrower_annual_income,omitempty" validate:"omitempty,gte=0"`
	ExpectedClosingDate    *time.Time       `json:"expected_closing_date,omitempty"`

	Borrower   loan.Borrower  `json:"borrower"`
	CoBorrower *loan.Borrower `json:"co_borrower,omitempty"`
	Property   loan.Property  `json:"property"`
	Notes      string         `json:"notes,omitempty" validate:"max=4000"`

	// set from the authenticated caller, never bound from the body
	Actor string `json:"-"`
}

// UpdateLoanInput is a patch; nil fields are left unchanged.
type UpdateLoanInput struct {
	LoanType               *loan.Type       `json:"loan_type,omitempty" validate:"omitempty,loantype"`
	LoanAmount             *decimal.Decimal `json:"loan_amount,omitempty" validate:"omitempty,gt=0"`
	InterestRate           *decimal.Decimal `json:"interest_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	TermMonths             *int             `json:"term_months,omitempty" validate:"omitempty,gt=0,lte=600"`
	PropertyValue          *decimal.Decimal `json:"property_value,omitempty" validate:"omitempty,gte=0"`
	PurchasePrice          *decimal.Decimal `json:"purchase_price,omitempty" validate:"omitempty,gte=0"`
	DownPayment            *decimal.Decimal `json:"down_payment,omitempty" validate:"omitempty,gte=0"`
	BorrowerAnnualIncome   *decimal.Decimal `json:"borrower_annual_income,omitempty" validate:"omitempty,gte=0"`
	CoBorrowerAnnualIncome *decimal.Decimal `json:"co_borrower_annual_income,omitempty" validate:"omitempty,gte=0"`
	ExpectedClosingDate    *time.Time       `json:"expected_closing_date,omitempty"`

	Borrower      *loan.Borrower `json:"borrower,omitempty"`
	CoBorrower    *loan.Borrower `json:"co_borrower,omitempty"`
	Property      *loan.Property `json:"property,omitempty"`
	Notes         *string        `json:"notes,omitempty" validate:"omitempty,max=4000"`
	InternalNotes *string        `json:"internal_notes,omitempty" validate:"omitempty,max=4000"`

	Actor string `json:"-"`
}

func (in UpdateLoanInput) touchesMetrics() bool {
	return in.LoanAmount != nil || in.InterestRate != nil || in.TermMonths != nil ||
		in.PropertyValue != nil || in.BorrowerAnnualIncome != nil || in.CoBorrowerAnnualIncome != nil
}

type TransitionInput struct {
	LoanID uint64      `json:"-"`
	To     loan.Status `json:"to_status" validate:"required,loanstatus"`
	Reason string      `json:"reason,omitempty" validate:"max=1000"`
	Notes  string      `json:"notes,omitempty" validate:"max=4000"`
	Actor  string      `json:"-"`
}

// StaffRole names the loan's staff slots.
type StaffRole string

const (
	StaffLoanOfficer StaffRole = "loan_officer"
	StaffProcessor   StaffRole = "processor"
	StaffUnderwriter StaffRole = "underwriter"
)

type AssignStaffInput struct {
	LoanID uint64    `json:"-"`
	Role   StaffRole `json:"role" validate:"required,oneof=loan_officer processor underwriter"`
	UserID string    `json:"user_id" validate:"required,max=64"`
	Actor  string    `json:"-"`
}
