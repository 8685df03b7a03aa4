package loanmock

import (
	"context"
	"errors"

	domain "mortgage-backend/internal/domain/loan"
)

var (
	_ domain.Repository           = (*Repo)(nil)
	_ domain.TransitionRepository = (*TransitionRepo)(nil)
)

var errUnimplemented = errors.New("loanmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset writers succeed; unset readers return errUnimplemented.
type Repo struct {
	CreateFn             func(ctx context.Context, l *domain.Loan) error
	GetByIDFn            func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByIDForUpdateFn   func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByLoanNumberFn    func(ctx context.Context, loanNumber string) (*domain.Loan, error)
	ExistsByLoanNumberFn func(ctx context.Context, loanNumber string) (bool, error)
	SaveFn               func(ctx context.Context, l *domain.Loan) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByLoanNumber(ctx context.Context, loanNumber string) (*domain.Loan, error) {
	if m.GetByLoanNumberFn != nil {
		return m.GetByLoanNumberFn(ctx, loanNumber)
	}
	return nil, errUnimplemented
}

// ExistsByLoanNumber defaults to "free".
func (m *Repo) ExistsByLoanNumber(ctx context.Context, loanNumber string) (bool, error) {
	if m.ExistsByLoanNumberFn != nil {
		return m.ExistsByLoanNumberFn(ctx, loanNumber)
	}
	return false, nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

// TransitionRepo records appends unless AppendFn is set.
type TransitionRepo struct {
	AppendFn     func(ctx context.Context, t *domain.StatusTransition) error
	ListByLoanFn func(ctx context.Context, loanID uint64) ([]domain.StatusTransition, error)

	Appended []domain.StatusTransition
}

func (m *TransitionRepo) Append(ctx context.Context, t *domain.StatusTransition) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, t)
	}
	m.Appended = append(m.Appended, *t)
	return nil
}

func (m *TransitionRepo) ListByLoan(ctx context.Context, loanID uint64) ([]domain.StatusTransition, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanID)
	}
	return nil, errUnimplemented
}
