package condition

import (
	"context"
	"time"
)

// Repository is the ConditionStore. Missing rows return errs.NotFound.
type Repository interface {
	Create(ctx context.Context, c *Condition) error
	GetByID(ctx context.Context, id uint64) (*Condition, error)
	// GetByIDForUpdate locks the row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Condition, error)
	Save(ctx context.Context, c *Condition) error
	Delete(ctx context.Context, id uint64) error
	// ListByLoan orders by priority (most urgent first), then id.
	ListByLoan(ctx context.Context, loanID uint64) ([]Condition, error)
	CountActiveByLoan(ctx context.Context, loanID uint64) (int64, error)
	// ListOverdue returns active conditions due before now.
	ListOverdue(ctx context.Context, now time.Time) ([]Condition, error)
}
