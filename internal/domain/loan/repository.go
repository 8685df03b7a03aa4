package loan

import "context"

// Repository is the LoanStore collaborator. Lookups of missing rows return
// an errs.NotFound error; Save returns errs.Conflict when the row changed
// underneath the caller.
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	// GetByIDForUpdate locks the row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	GetByLoanNumber(ctx context.Context, loanNumber string) (*Loan, error)
	ExistsByLoanNumber(ctx context.Context, loanNumber string) (bool, error)
	Save(ctx context.Context, l *Loan) error
}

// TransitionRepository is the append-only TransitionStore.
type TransitionRepository interface {
	Append(ctx context.Context, t *StatusTransition) error
	ListByLoan(ctx context.Context, loanID uint64) ([]StatusTransition, error)
}
