package loan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"mortgage-backend/internal/domain/condition"
	"mortgage-backend/internal/domain/errs"
	"mortgage-backend/internal/domain/loan"
	"mortgage-backend/internal/domain/uow"
	"mortgage-backend/internal/testutil/conditionmock"
	"mortgage-backend/internal/testutil/loanmock"
	"mortgage-backend/internal/testutil/uowmock"
	"mortgage-backend/internal/testutil/userdir"
	conditionuc "mortgage-backend/internal/usecase/condition"
)

var toConditions = []loan.Status{
	loan.StatusSubmitted, loan.StatusUnderReview, loan.StatusPreUnderwriting,
	loan.StatusPreApproved, loan.StatusApprovedWithConditions,
}

func TestTransition_ApprovalWithConditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tracker := conditionuc.NewTracker(f.store.Loans(), f.store.Conditions(), f.store, f.store,
		conditionuc.WithClock(f.clock))

	l, err := f.uc.Create(ctx, conventional())
	require.NoError(t, err)
	f.clock.Advance(24 * time.Hour)
	l = f.advance(t, l.ID, toConditions...)
	require.Equal(t, loan.StatusApprovedWithConditions, l.Status)
	require.NotNil(t, l.PreApprovalDate)
	require.NotNil(t, l.ApprovalDate)

	c1, err := tracker.Create(ctx, conditionuc.CreateConditionInput{
		LoanID: l.ID, Type: condition.TypeAppraisal, Title: "Full appraisal", Actor: actor,
	})
	require.NoError(t, err)
	c2, err := tracker.Create(ctx, conditionuc.CreateConditionInput{
		LoanID: l.ID, Type: condition.TypeGiftLetter, Title: "Gift letter from parent", Priority: condition.PriorityHigh, Actor: actor,
	})
	require.NoError(t, err)
	assert.Equal(t, condition.StatusPending, c1.Status)
	assert.Equal(t, condition.StatusPending, c2.Status)

	_, err = f.uc.Transition(ctx, TransitionInput{LoanID: l.ID, To: loan.StatusClearToClose, Actor: actor})
	require.ErrorIs(t, err, errs.ErrConditionsUnsatisfied)

	got, err := f.uc.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.StatusApprovedWithConditions, got.Status)
	assert.Nil(t, got.ClearToCloseDate)

	_, err = tracker.Complete(ctx, c1.ID, "uw-1", "appraisal at value")
	require.NoError(t, err)
	_, err = tracker.Waive(ctx, c2.ID, "uw-1", "funds already seasoned")
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	l, err = f.uc.Transition(ctx, TransitionInput{LoanID: l.ID, To: loan.StatusClearToClose, Actor: actor})
	require.NoError(t, err)
	assert.Equal(t, loan.StatusClearToClose, l.Status)
	require.NotNil(t, l.ClearToCloseDate)
	assert.True(t, l.ClearToCloseDate.Equal(f.clock.Now()))

	hist, err := f.uc.History(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, hist, len(toConditions)+2)
	last := hist[len(hist)-1]
	require.NotNil(t, last.FromStatus)
	assert.Equal(t, loan.StatusApprovedWithConditions, *last.FromStatus)
	assert.Equal(t, loan.StatusClearToClose, last.ToStatus)
}

func TestTransition_ClearToCloseFromApprovedSkipsGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tracker := conditionuc.NewTracker(f.store.Loans(), f.store.Conditions(), f.store, f.store)

	l, err := f.uc.Create(ctx, conventional())
	require.NoError(t, err)
	f.advance(t, l.ID, loan.StatusSubmitted, loan.StatusDocumentCollection, loan.StatusPreUnderwriting,
		loan.StatusPreApproved, loan.StatusApproved)
	_, err = tracker.Create(ctx, conditionuc.CreateConditionInput{
		LoanID: l.ID, Type: condition.TypeSurvey, Title: "Survey", Actor: actor,
	})
	require.NoError(t, err)

	l = f.advance(t, l.ID, loan.StatusClearToClose, loan.StatusClosing, loan.StatusFunded)
	assert.Equal(t, loan.StatusFunded, l.Status)
	assert.NotNil(t, l.ClosingDate)
	assert.NotNil(t, l.FundedDate)
}

func TestTransition_TerminalFreeze(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, err := f.uc.Create(ctx, conventional())
	require.NoError(t, err)
	f.advance(t, l.ID, loan.StatusSubmitted)

	l, err = f.uc.Transition(ctx, TransitionInput{
		LoanID: l.ID, To: loan.StatusDenied, Reason: "credit score below floor", Actor: "uw-1",
	})
	require.NoError(t, err)
	assert.Equal(t, loan.StatusDenied, l.Status)

	for _, to := range loan.Statuses {
		_, err := f.uc.Transition(ctx, TransitionInput{LoanID: l.ID, To: to, Reason: "retry", Actor: actor})
		require.Error(t, err, "DENIED -> %s", to)
		assert.Equal(t, errs.IllegalTransition, errs.KindOf(err), "DENIED -> %s", to)
		assert.ErrorIs(t, err, errs.ErrTerminalState, "DENIED -> %s", to)
	}

	hist, err := f.uc.History(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, "credit score below floor", hist[2].Reason)
}

func TestTransition_RejectionsNeedReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, err := f.uc.Create(ctx, conventional())
	require.NoError(t, err)

	f.advance(t, l.ID, loan.StatusSubmitted)
	_, err = f.uc.Transition(ctx, TransitionInput{LoanID: l.ID, To: loan.StatusDenied, Reason: "   ", Actor: actor})
	assert.ErrorIs(t, err, errs.ErrMissingReason)

	f.advance(t, l.ID, loan.StatusUnderReview, loan.StatusPreUnderwriting, loan.StatusPreApproved,
		loan.StatusApproved, loan.StatusClearToClose)
	_, err = f.uc.Transition(ctx, TransitionInput{LoanID: l.ID, To: loan.StatusCancelled, Actor: actor})
	assert.ErrorIs(t, err, errs.ErrMissingReason)

	// withdrawal is borrower-initiated and needs no reason
	g, err := f.uc.Create(ctx, conventional())
	require.NoError(t, err)
	_, err = f.uc.Transition(ctx, TransitionInput{LoanID: g.ID, To: loan.StatusWithdrawn, Actor: actor})
	assert.NoError(t, err)
}

func TestTransition_IllegalEdgesAndMissingLoan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, err := f.uc.Create(ctx, conventional())
	require.NoError(t, err)

	_, err = f.uc.Transition(ctx, TransitionInput{LoanID: l.ID, To: loan.StatusApproved, Actor: actor})
	assert.ErrorIs(t, err, errs.ErrIllegalTransition)
	_, err = f.uc.Transition(ctx, TransitionInput{LoanID: l.ID, To: loan.StatusApplicationStarted, Actor: actor})
	assert.ErrorIs(t, err, errs.ErrIllegalTransition)
	_, err = f.uc.Transition(ctx, TransitionInput{LoanID: 999, To: loan.StatusSubmitted, Actor: actor})
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = f.uc.Transition(ctx, TransitionInput{LoanID: l.ID, To: loan.StatusSubmitted})
	assert.ErrorIs(t, err, errs.ErrValidation)

	hist, err := f.uc.History(ctx, l.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestTransition_ConflictSurfacesAndSkipsAppend(t *testing.T) {
	locked := &loan.Loan{ID: 3, LoanNumber: "LN2509150003", Status: loan.StatusSubmitted, Version: 4}
	transitions := &loanmock.TransitionRepo{}
	loans := &loanmock.Repo{
		SaveFn: func(context.Context, *loan.Loan) error {
			return errs.New(errs.Conflict, "loan changed")
		},
	}
	repos := uow.Repos{Loans: loans, Transitions: transitions, Conditions: &conditionmock.Repo{}}
	uc := NewUsecase(loans, transitions, userdir.New(), uowmock.Passthrough(repos, locked))

	_, err := uc.Transition(context.Background(), TransitionInput{LoanID: 3, To: loan.StatusUnderReview, Actor: actor})
	assert.ErrorIs(t, err, errs.ErrConflict)
	assert.Empty(t, transitions.Appended)
}

func TestTransition_AppendFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, err := f.uc.Create(ctx, conventional())
	require.NoError(t, err)

	boom := errors.New("audit table unavailable")
	failing := uowmock.New().WithWithinLoanTx(func(ctx context.Context, id uint64, fn func(uow.Repos, *loan.Loan) error) error {
		return f.store.WithinLoanTx(ctx, id, func(r uow.Repos, l *loan.Loan) error {
			r.Transitions = &loanmock.TransitionRepo{
				AppendFn: func(context.Context, *loan.StatusTransition) error { return boom },
			}
			return fn(r, l)
		})
	})
	uc := NewUsecase(f.store.Loans(), f.store.Transitions(), f.store, failing, WithClock(f.clock))

	_, err = uc.Transition(ctx, TransitionInput{LoanID: l.ID, To: loan.StatusSubmitted, Actor: actor})
	require.ErrorIs(t, err, boom)

	got, err := f.uc.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.StatusApplicationStarted, got.Status)
	assert.Equal(t, l.Version, got.Version)
}

func TestGuard_CustomRules(t *testing.T) {
	blocked := errs.New(errs.ConditionsUnsatisfied, "appraisal missing")
	g := NewGuard(func(context.Context, uow.Repos, *loan.Loan, TransitionInput) error { return blocked })
	err := g.Check(context.Background(), uow.Repos{}, &loan.Loan{}, TransitionInput{})
	assert.Same(t, blocked, err)
	assert.NoError(t, NewGuard().Check(context.Background(), uow.Repos{}, &loan.Loan{}, TransitionInput{}))
}

// ---- properties ----

func TestProperty_HistoryCountsSuccessfulTransitions(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(t)
		ctx := context.Background()
		l, err := f.uc.Create(ctx, conventional())
		if err != nil {
			rt.Fatalf("create: %v", err)
		}
		reach := map[loan.Status]bool{loan.InitialStatus: true}
		for _, s := range loan.Statuses {
			for _, n := range s.NextStatuses() {
				reach[n] = true
			}
		}

		ok := 0
		steps := rapid.IntRange(0, 15).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			in := TransitionInput{
				LoanID: l.ID,
				To:     rapid.SampledFrom(loan.Statuses).Draw(rt, "to"),
				Reason: rapid.SampledFrom([]string{"", "policy"}).Draw(rt, "reason"),
				Actor:  actor,
			}
			got, err := f.uc.Transition(ctx, in)
			if err != nil {
				continue
			}
			ok++
			if !reach[got.Status] {
				rt.Fatalf("reached %s which has no inbound edge", got.Status)
			}
		}

		hist, err := f.uc.History(ctx, l.ID)
		if err != nil {
			rt.Fatalf("history: %v", err)
		}
		if len(hist) != ok+1 {
			rt.Fatalf("history has %d records, want %d", len(hist), ok+1)
		}
		for i := 1; i < len(hist); i++ {
			if hist[i].FromStatus == nil || *hist[i].FromStatus != hist[i-1].ToStatus {
				rt.Fatalf("record %d does not chain from %s", i, hist[i-1].ToStatus)
			}
		}
	})
}

func TestProperty_UnsatisfiedConditionsBlockClearToClose(t *testing.T) {
	ops := []string{"none", "start", "complete", "waive", "expire"}
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(t)
		ctx := context.Background()
		tracker := conditionuc.NewTracker(f.store.Loans(), f.store.Conditions(), f.store, f.store,
			conditionuc.WithClock(f.clock))

		l, err := f.uc.Create(ctx, conventional())
		if err != nil {
			rt.Fatalf("create: %v", err)
		}
		for _, s := range toConditions {
			if _, err := f.uc.Transition(ctx, TransitionInput{LoanID: l.ID, To: s, Actor: actor}); err != nil {
				rt.Fatalf("advance to %s: %v", s, err)
			}
		}

		n := rapid.IntRange(0, 5).Draw(rt, "conditions")
		for i := 0; i < n; i++ {
			c, err := tracker.Create(ctx, conditionuc.CreateConditionInput{
				LoanID: l.ID, Type: condition.TypeOther, Title: "doc", Actor: actor,
			})
			if err != nil {
				rt.Fatalf("create condition: %v", err)
			}
			switch rapid.SampledFrom(ops).Draw(rt, "op") {
			case "start":
				_, err = tracker.Start(ctx, c.ID, actor)
			case "complete":
				_, err = tracker.Complete(ctx, c.ID, actor, "")
			case "waive":
				_, err = tracker.Waive(ctx, c.ID, actor, "not needed")
			case "expire":
				_, err = tracker.Expire(ctx, c.ID, actor)
			}
			if err != nil {
				rt.Fatalf("condition op: %v", err)
			}
		}

		satisfied, err := tracker.AllSatisfied(ctx, l.ID)
		if err != nil {
			rt.Fatalf("all satisfied: %v", err)
		}
		_, err = f.uc.Transition(ctx, TransitionInput{LoanID: l.ID, To: loan.StatusClearToClose, Actor: actor})
		switch {
		case satisfied && err != nil:
			rt.Fatalf("satisfied loan rejected: %v", err)
		case !satisfied && !errors.Is(err, errs.ErrConditionsUnsatisfied):
			rt.Fatalf("want ConditionsUnsatisfied, got %v", err)
		}
	})
}
