package loan

import (
	"context"
	"strings"

	"mortgage-backend/internal/domain/condition"
	"mortgage-backend/internal/domain/errs"
	"mortgage-backend/internal/domain/loan"
	"mortgage-backend/internal/domain/uow"
)

// Rule is one cross-cutting check run after the structural legality check
// and before the write. It sees the locked loan and the tx-bound repos.
type Rule func(ctx context.Context, r uow.Repos, l *loan.Loan, in TransitionInput) error

// Guard evaluates its rules in order; the first failure wins.
type Guard struct{ rules []Rule }

func NewGuard(rules ...Rule) Guard { return Guard{rules: rules} }

// DefaultGuard: reason for rejections, then the clear-to-close gate.
func DefaultGuard() Guard {
	return NewGuard(RequireReason, ClearToCloseGate)
}

func (g Guard) Check(ctx context.Context, r uow.Repos, l *loan.Loan, in TransitionInput) error {
	for _, rule := range g.rules {
		if err := rule(ctx, r, l, in); err != nil {
			return err
		}
	}
	return nil
}

// RequireReason rejects DENIED and CANCELLED without a non-blank reason.
func RequireReason(_ context.Context, _ uow.Repos, _ *loan.Loan, in TransitionInput) error {
	if in.To.RequiresReason() && strings.TrimSpace(in.Reason) == "" {
		return errs.New(errs.MissingReason, "a reason is required to move a loan to %s", in.To)
	}
	return nil
}

// ClearToCloseGate holds APPROVED_WITH_CONDITIONS -> CLEAR_TO_CLOSE until every
// condition is completed or waived. From APPROVED it is not consulted.
func ClearToCloseGate(ctx context.Context, r uow.Repos, l *loan.Loan, in TransitionInput) error {
	if l.Status != loan.StatusApprovedWithConditions || in.To != loan.StatusClearToClose {
		return nil
	}
	conds, err := r.Conditions.ListByLoan(ctx, l.ID)
	if err != nil {
		return err
	}
	if condition.AllSatisfied(conds) {
		return nil
	}
	open := 0
	for i := range conds {
		if !conds[i].Status.IsSatisfied() {
			open++
		}
	}
	return errs.New(errs.ConditionsUnsatisfied, "loan %s has %d unsatisfied condition(s)", l.LoanNumber, open)
}
