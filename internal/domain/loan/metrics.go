package loan

import "github.com/shopspring/decimal"

const (
	ratioPlaces    = 4
	currencyPlaces = 2
	// scale kept for the monthly rate and the compounding factor
	workingPlaces = 20
)

var (
	hundred        = decimal.NewFromInt(100)
	twelve         = decimal.NewFromInt(12)
	monthsPercents = decimal.NewFromInt(1200)
	one            = decimal.NewFromInt(1)
)

// Inputs are the loan fields the derived metrics depend on. Nil means absent.
type Inputs struct {
	LoanAmount             *decimal.Decimal
	PropertyValue          *decimal.Decimal
	AnnualInterestRate     *decimal.Decimal // percent, e.g. 6.5
	TermMonths             int
	BorrowerAnnualIncome   *decimal.Decimal
	CoBorrowerAnnualIncome *decimal.Decimal
}

// Metrics holds derived values; nil means undefined for the given inputs.
type Metrics struct {
	LoanToValueRatio      *decimal.Decimal
	MonthlyPayment        *decimal.Decimal
	DebtToIncomeRatio     *decimal.Decimal
	BorrowerMonthlyIncome *decimal.Decimal
}

// Calculate derives LTV, amortized monthly payment, DTI and borrower monthly
// income. It is pure and uses only decimal arithmetic, rounding half-up.
func Calculate(in Inputs) Metrics {
	var m Metrics

	if in.LoanAmount != nil && in.PropertyValue != nil && in.PropertyValue.IsPositive() {
		ltv := in.LoanAmount.Mul(hundred).DivRound(*in.PropertyValue, ratioPlaces)
		m.LoanToValueRatio = &ltv
	}

	if in.LoanAmount != nil && in.AnnualInterestRate != nil && in.TermMonths > 0 {
		m.MonthlyPayment = monthlyPayment(*in.LoanAmount, *in.AnnualInterestRate, in.TermMonths)
	}

	if in.BorrowerAnnualIncome != nil {
		monthly := in.BorrowerAnnualIncome.DivRound(twelve, currencyPlaces)
		m.BorrowerMonthlyIncome = &monthly

		total := *in.BorrowerAnnualIncome
		if in.CoBorrowerAnnualIncome != nil {
			total = total.Add(*in.CoBorrowerAnnualIncome)
		}
		if in.BorrowerAnnualIncome.IsPositive() && m.MonthlyPayment != nil && total.IsPositive() {
			// payment / (total / 12) * 100
			dti := m.MonthlyPayment.Mul(monthsPercents).DivRound(total, ratioPlaces)
			m.DebtToIncomeRatio = &dti
		}
	}

	return m
}

// monthlyPayment is the standard amortization formula
// P * r * (1+r)^n / ((1+r)^n - 1) with r = rate/100/12.
func monthlyPayment(principal, annualRate decimal.Decimal, months int) *decimal.Decimal {
	r := annualRate.DivRound(monthsPercents, workingPlaces)
	if r.IsZero() {
		p := principal.DivRound(decimal.NewFromInt(int64(months)), currencyPlaces)
		return &p
	}
	factor := powInt(one.Add(r), months)
	denom := factor.Sub(one)
	if denom.IsZero() {
		return nil
	}
	p := principal.Mul(r).Mul(factor).DivRound(denom, currencyPlaces)
	return &p
}

// powInt raises base to a non-negative integer power by squaring, holding
// intermediates at workingPlaces so the digit count stays bounded.
func powInt(base decimal.Decimal, n int) decimal.Decimal {
	result := one
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(workingPlaces)
		}
		base = base.Mul(base).Round(workingPlaces)
		n >>= 1
	}
	return result
}
