package conditionmock

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "mortgage-backend/internal/domain/condition"
)

func TestRepo_Defaults(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}

	if err := m.Create(ctx, &domain.Condition{}); err != nil {
		t.Fatalf("Create default: %v", err)
	}
	if err := m.Save(ctx, &domain.Condition{}); err != nil {
		t.Fatalf("Save default: %v", err)
	}
	if err := m.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete default: %v", err)
	}
	if cs, err := m.ListByLoan(ctx, 1); cs != nil || err != nil {
		t.Fatalf("ListByLoan default: %v, %v", cs, err)
	}
	if _, err := m.GetByID(ctx, 1); !errors.Is(err, errUnimplemented) {
		t.Fatalf("GetByID default: %v", err)
	}
	if _, err := m.GetByIDForUpdate(ctx, 1); !errors.Is(err, errUnimplemented) {
		t.Fatalf("GetByIDForUpdate default: %v", err)
	}
	if _, err := m.CountActiveByLoan(ctx, 1); !errors.Is(err, errUnimplemented) {
		t.Fatalf("CountActiveByLoan default: %v", err)
	}
	if _, err := m.ListOverdue(ctx, time.Now()); !errors.Is(err, errUnimplemented) {
		t.Fatalf("ListOverdue default: %v", err)
	}
}

func TestRepo_ListByLoanForwards(t *testing.T) {
	ctx := context.Background()
	m := &Repo{
		ListByLoanFn: func(_ context.Context, loanID uint64) ([]domain.Condition, error) {
			return []domain.Condition{{ID: 1, LoanID: loanID, Status: domain.StatusPending}}, nil
		},
	}
	cs, err := m.ListByLoan(ctx, 5)
	if err != nil || len(cs) != 1 || cs[0].LoanID != 5 {
		t.Fatalf("ListByLoan = %+v, %v", cs, err)
	}
}
