package uow

import (
	"context"

	"mortgage-backend/internal/domain/condition"
	"mortgage-backend/internal/domain/loan"
)

// Repos are bound to one transaction.
type Repos struct {
	Loans       loan.Repository
	Transitions loan.TransitionRepository
	Conditions  condition.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the loan row first, then pass it in; a missing loan is errs.NotFound
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.Loan) error) error
}
