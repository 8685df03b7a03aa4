package mysql

import (
	"context"

	"gorm.io/gorm"

	loanDomain "mortgage-backend/internal/domain/loan"
)

var _ loanDomain.TransitionRepository = (*TransitionRepository)(nil)

// TransitionRepository only inserts and reads; rows are never updated.
type TransitionRepository struct{ db *gorm.DB }

func NewTransitionRepository(db *gorm.DB) *TransitionRepository {
	return &TransitionRepository{db: db}
}

func (r *TransitionRepository) Append(ctx context.Context, t *loanDomain.StatusTransition) error {
	return translate(r.db.WithContext(ctx).Create(t).Error, "transition %s", t.EventID)
}

// ListByLoan returns records oldest first; id breaks ties within one instant.
func (r *TransitionRepository) ListByLoan(ctx context.Context, loanID uint64) ([]loanDomain.StatusTransition, error) {
	var out []loanDomain.StatusTransition
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("changed_at ASC, id ASC").
		Find(&out).Error
	return out, translate(err, "transitions of loan %d", loanID)
}
