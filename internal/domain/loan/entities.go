package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeConventional Type = "CONVENTIONAL"
	TypeFHA          Type = "FHA"
	TypeVA           Type = "VA"
	TypeUSDA         Type = "USDA"
	TypeJumbo        Type = "JUMBO"
	TypeRefinance    Type = "REFINANCE"
)

func (t Type) Valid() bool {
	switch t {
	case TypeConventional, TypeFHA, TypeVA, TypeUSDA, TypeJumbo, TypeRefinance:
		return true
	}
	return false
}

// Table: loans
type Loan struct {
	ID           uint64          `gorm:"primaryKey;column:id" json:"id"`
	LoanNumber   string          `gorm:"column:loan_number;size:12;not null;uniqueIndex:ux_loans_loan_number" json:"loan_number"`
	LoanType     Type            `gorm:"column:loan_type;size:20;not null" json:"loan_type"`
	LoanAmount   decimal.Decimal `gorm:"column:loan_amount;type:decimal(14,2);not null" json:"loan_amount"`
	InterestRate decimal.Decimal `gorm:"column:interest_rate;type:decimal(7,4);not null" json:"interest_rate"`
	TermMonths   int             `gorm:"column:term_months;not null" json:"term_months"`
	Status       Status          `gorm:"column:status;size:32;not null;index:idx_loans_status" json:"status"`

	// milestones
	ApplicationDate     time.Time  `gorm:"column:application_date;not null" json:"application_date"`
	PreApprovalDate     *time.Time `gorm:"column:pre_approval_date" json:"pre_approval_date,omitempty"`
	ApprovalDate        *time.Time `gorm:"column:approval_date" json:"approval_date,omitempty"`
	ClearToCloseDate    *time.Time `gorm:"column:clear_to_close_date" json:"clear_to_close_date,omitempty"`
	ClosingDate         *time.Time `gorm:"column:closing_date" json:"closing_date,omitempty"`
	FundedDate          *time.Time `gorm:"column:funded_date" json:"funded_date,omitempty"`
	ExpectedClosingDate *time.Time `gorm:"column:expected_closing_date" json:"expected_closing_date,omitempty"`

	// financial inputs
	PropertyValue          *decimal.Decimal `gorm:"column:property_value;type:decimal(14,2)" json:"property_value,omitempty"`
	PurchasePrice          *decimal.Decimal `gorm:"column:purchase_price;type:decimal(14,2)" json:"purchase_price,omitempty"`
	DownPayment            *decimal.Decimal `gorm:"column:down_payment;type:decimal(14,2)" json:"down_payment,omitempty"`
	BorrowerAnnualIncome   *decimal.Decimal `gorm:"column:borrower_annual_income;type:decimal(14,2)" json:"borrower_annual_income,omitempty"`
	CoBorrowerAnnualIncome *decimal.Decimal `gorm:"column:co_borrower_annual_income;type:decimal(14,2)" json:"co_borrower_annual_income,omitempty"`

	// derived, see Calculate
	LoanToValueRatio      *decimal.Decimal `gorm:"column:loan_to_value_ratio;type:decimal(12,4)" json:"loan_to_value_ratio,omitempty"`
	DebtToIncomeRatio     *decimal.Decimal `gorm:"column:debt_to_income_ratio;type:decimal(12,4)" json:"debt_to_income_ratio,omitempty"`
	MonthlyPayment        *decimal.Decimal `gorm:"column:monthly_payment;type:decimal(14,2)" json:"monthly_payment,omitempty"`
	BorrowerMonthlyIncome *decimal.Decimal `gorm:"column:borrower_monthly_income;type:decimal(14,2)" json:"borrower_monthly_income,omitempty"`

	Borrower   Borrower  `gorm:"embedded;embeddedPrefix:borrower_" json:"borrower"`
	CoBorrower Borrower  `gorm:"embedded;embeddedPrefix:co_borrower_" json:"co_borrower"`
	Property   Property  `gorm:"embedded;embeddedPrefix:property_" json:"property"`

	// staff, by opaque user id
	LoanOfficerID *string `gorm:"column:loan_officer_id;size:64;index" json:"loan_officer_id,omitempty"`
	ProcessorID   *string `gorm:"column:processor_id;size:64;index" json:"processor_id,omitempty"`
	UnderwriterID *string `gorm:"column:underwriter_id;size:64;index" json:"underwriter_id,omitempty"`

	Notes          string    `gorm:"column:notes;type:text" json:"notes,omitempty"`
	InternalNotes  string    `gorm:"column:internal_notes;type:text" json:"-"`
	CreatedBy      string    `gorm:"column:created_by;size:64;not null" json:"created_by"`
	LastModifiedBy string    `gorm:"column:last_modified_by;size:64" json:"last_modified_by,omitempty"`
	Version        uint64    `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// Borrower identity fields are carried through opaquely.
type Borrower struct {
	FirstName   string `gorm:"column:first_name;size:100" json:"first_name,omitempty"`
	LastName    string `gorm:"column:last_name;size:100" json:"last_name,omitempty"`
	Email       string `gorm:"column:email;size:255" json:"email,omitempty"`
	Phone       string `gorm:"column:phone;size:20" json:"phone,omitempty"`
	CreditScore *int   `gorm:"column:credit_score" json:"credit_score,omitempty"`
}

func (b Borrower) IsZero() bool {
	return b.FirstName == "" && b.LastName == "" && b.Email == "" && b.Phone == "" && b.CreditScore == nil
}

type Property struct {
	Address string `gorm:"column:address;size:500" json:"address,omitempty"`
	City    string `gorm:"column:city;size:100" json:"city,omitempty"`
	State   string `gorm:"column:state;size:50" json:"state,omitempty"`
	Zip     string `gorm:"column:zip;size:10" json:"zip,omitempty"`
	Kind    string `gorm:"column:kind;size:50" json:"kind,omitempty"`
}

// MetricInputs projects the fields Calculate reads.
func (l *Loan) MetricInputs() Inputs {
	amount := l.LoanAmount
	rate := l.InterestRate
	return Inputs{
		LoanAmount:             &amount,
		AnnualInterestRate:     &rate,
		TermMonths:             l.TermMonths,
		PropertyValue:          l.PropertyValue,
		BorrowerAnnualIncome:   l.BorrowerAnnualIncome,
		CoBorrowerAnnualIncome: l.CoBorrowerAnnualIncome,
	}
}

// HasCoBorrower reports whether the single co-borrower slot is occupied.
func (l *Loan) HasCoBorrower() bool {
	return !l.CoBorrower.IsZero() || l.CoBorrowerAnnualIncome != nil
}

// ApplyMetrics overwrites the derived columns with m.
func (l *Loan) ApplyMetrics(m Metrics) {
	l.LoanToValueRatio = m.LoanToValueRatio
	l.MonthlyPayment = m.MonthlyPayment
	l.DebtToIncomeRatio = m.DebtToIncomeRatio
	l.BorrowerMonthlyIncome = m.BorrowerMonthlyIncome
}
