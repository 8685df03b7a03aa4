package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mortgage-backend/internal/domain/condition"
	"mortgage-backend/internal/domain/errs"
	"mortgage-backend/internal/domain/loan"
	"mortgage-backend/internal/domain/uow"
	"mortgage-backend/internal/domain/user"
)

func newLoan(number string) *loan.Loan {
	return &loan.Loan{
		LoanNumber: number,
		LoanType:   loan.TypeFHA,
		LoanAmount: decimal.NewFromInt(100000),
		TermMonths: 360,
		Status:     loan.InitialStatus,
		CreatedBy:  "u1",
	}
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(r uow.Repos) error {
		l := newLoan("LN2509150001")
		require.NoError(t, r.Loans.Create(ctx, l))
		require.NoError(t, r.Transitions.Append(ctx, &loan.StatusTransition{LoanID: l.ID, ToStatus: l.Status}))
		require.NoError(t, r.Conditions.Create(ctx, &condition.Condition{LoanID: l.ID, Status: condition.StatusPending}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 0, s.Loans().Count())
	exists, err := s.Loans().ExistsByLoanNumber(ctx, "LN2509150001")
	require.NoError(t, err)
	assert.False(t, exists)
	hist, _ := s.Transitions().ListByLoan(ctx, 1)
	assert.Empty(t, hist)
	_, err = s.Conditions().GetByID(ctx, 1)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestLoanRepo_SaveDetectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	s := New()
	l := newLoan("LN2509150002")
	require.NoError(t, s.Loans().Create(ctx, l))

	a, _ := s.Loans().GetByID(ctx, l.ID)
	b, _ := s.Loans().GetByID(ctx, l.ID)
	a.Notes = "first"
	require.NoError(t, s.Loans().Save(ctx, a))
	b.Notes = "second"
	assert.ErrorIs(t, s.Loans().Save(ctx, b), errs.ErrConflict)

	got, _ := s.Loans().GetByID(ctx, l.ID)
	assert.Equal(t, "first", got.Notes)
	assert.Equal(t, uint64(2), got.Version)
}

func TestWithinLoanTx_MissingLoan(t *testing.T) {
	s := New()
	err := s.WithinLoanTx(context.Background(), 42, func(uow.Repos, *loan.Loan) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDirectory(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.PutUser(user.User{UserID: "u-1", Email: "Ann@Lender.test", Role: user.RoleUnderwriter, Active: true})

	u, err := s.FindByIdentifier(ctx, "ann@lender.test")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.UserID)

	u, err = s.FindByIdentifier(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, user.RoleUnderwriter, u.Role)

	_, err = s.FindByID(ctx, "nobody")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
