package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	conditionDomain "mortgage-backend/internal/domain/condition"
	"mortgage-backend/internal/domain/errs"
)

var _ conditionDomain.Repository = (*ConditionRepository)(nil)

type ConditionRepository struct{ db *gorm.DB }

func NewConditionRepository(db *gorm.DB) *ConditionRepository {
	return &ConditionRepository{db: db}
}

func (r *ConditionRepository) Create(ctx context.Context, c *conditionDomain.Condition) error {
	return translate(r.db.WithContext(ctx).Create(c).Error, "condition of loan %d", c.LoanID)
}

func (r *ConditionRepository) GetByID(ctx context.Context, id uint64) (*conditionDomain.Condition, error) {
	var out conditionDomain.Condition
	if err := r.db.WithContext(ctx).First(&out, id).Error; err != nil {
		return nil, translate(err, "condition %d", id)
	}
	return &out, nil
}

func (r *ConditionRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*conditionDomain.Condition, error) {
	var out conditionDomain.Condition
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&out, id).Error
	if err != nil {
		return nil, translate(err, "condition %d", id)
	}
	return &out, nil
}

// Save rewrites the mutable columns; loan ownership and creation audit stay fixed.
func (r *ConditionRepository) Save(ctx context.Context, c *conditionDomain.Condition) error {
	res := r.db.WithContext(ctx).
		Model(c).
		Select("*").
		Omit("id", "loan_id", "created_by", "created_at").
		Updates(c)
	if res.Error != nil {
		return translate(res.Error, "condition %d", c.ID)
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero rows when nothing changed, so confirm the row exists
		var n int64
		if err := r.db.WithContext(ctx).Model(&conditionDomain.Condition{}).Where("id = ?", c.ID).Count(&n).Error; err != nil {
			return translate(err, "condition %d", c.ID)
		}
		if n == 0 {
			return errs.New(errs.NotFound, "condition %d not found", c.ID)
		}
	}
	return nil
}

func (r *ConditionRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&conditionDomain.Condition{}, id)
	if res.Error != nil {
		return translate(res.Error, "condition %d", id)
	}
	if res.RowsAffected == 0 {
		return errs.New(errs.NotFound, "condition %d not found", id)
	}
	return nil
}

// ListByLoan orders by priority, most urgent first, in Go; the column holds
// names, not ranks.
func (r *ConditionRepository) ListByLoan(ctx context.Context, loanID uint64) ([]conditionDomain.Condition, error) {
	var out []conditionDomain.Condition
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err, "conditions of loan %d", loanID)
	}
	conditionDomain.SortByPriority(out)
	return out, nil
}

func (r *ConditionRepository) CountActiveByLoan(ctx context.Context, loanID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&conditionDomain.Condition{}).
		Where("loan_id = ? AND status IN ?", loanID, activeStatuses()).
		Count(&n).Error
	return n, translate(err, "conditions of loan %d", loanID)
}

func (r *ConditionRepository) ListOverdue(ctx context.Context, now time.Time) ([]conditionDomain.Condition, error) {
	var out []conditionDomain.Condition
	err := r.db.WithContext(ctx).
		Where("due_date IS NOT NULL AND due_date < ? AND status IN ?", now, activeStatuses()).
		Order("due_date ASC, id ASC").
		Find(&out).Error
	return out, translate(err, "overdue conditions")
}

func activeStatuses() []conditionDomain.Status {
	return []conditionDomain.Status{conditionDomain.StatusPending, conditionDomain.StatusInProgress}
}
