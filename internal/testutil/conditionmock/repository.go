package conditionmock

import (
	"context"
	"errors"
	"time"

	domain "mortgage-backend/internal/domain/condition"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("conditionmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset writers succeed; unset readers return errUnimplemented, except
// ListByLoan which returns no conditions.
type Repo struct {
	CreateFn            func(ctx context.Context, c *domain.Condition) error
	GetByIDFn           func(ctx context.Context, id uint64) (*domain.Condition, error)
	GetByIDForUpdateFn  func(ctx context.Context, id uint64) (*domain.Condition, error)
	SaveFn              func(ctx context.Context, c *domain.Condition) error
	DeleteFn            func(ctx context.Context, id uint64) error
	ListByLoanFn        func(ctx context.Context, loanID uint64) ([]domain.Condition, error)
	CountActiveByLoanFn func(ctx context.Context, loanID uint64) (int64, error)
	ListOverdueFn       func(ctx context.Context, now time.Time) ([]domain.Condition, error)
}

func (m *Repo) Create(ctx context.Context, c *domain.Condition) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Condition, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Condition, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) Save(ctx context.Context, c *domain.Condition) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, c)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, id uint64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *Repo) ListByLoan(ctx context.Context, loanID uint64) ([]domain.Condition, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanID)
	}
	return nil, nil
}

func (m *Repo) CountActiveByLoan(ctx context.Context, loanID uint64) (int64, error) {
	if m.CountActiveByLoanFn != nil {
		return m.CountActiveByLoanFn(ctx, loanID)
	}
	return 0, errUnimplemented
}

func (m *Repo) ListOverdue(ctx context.Context, now time.Time) ([]domain.Condition, error) {
	if m.ListOverdueFn != nil {
		return m.ListOverdueFn(ctx, now)
	}
	return nil, errUnimplemented
}
