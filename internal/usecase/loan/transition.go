package loan

import (
	"context"
	"strings"
	"time"

	"mortgage-backend/internal/domain/errs"
	"mortgage-backend/internal/domain/loan"
	"mortgage-backend/internal/domain/uow"
	"mortgage-backend/pkg/id"
)

// Transition moves a loan along one legal edge. The loan row is locked, the
// structural check and guard run against it, then the status, milestone and
// audit record are written in the same unit of work.
func (u *Usecase) Transition(ctx context.Context, in TransitionInput) (*loan.Loan, error) {
	if strings.TrimSpace(in.Actor) == "" {
		return nil, errs.New(errs.ValidationFailure, "actor is required")
	}
	start := time.Now()

	var (
		out  *loan.Loan
		from loan.Status
	)
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if err := loan.CheckTransition(l.Status, in.To); err != nil {
			return err
		}
		if err := u.guard.Check(ctx, r, l, in); err != nil {
			return err
		}

		now := u.clock.Now()
		from = l.Status
		l.Status = in.To
		l.StampMilestone(in.To, now)
		l.LastModifiedBy = in.Actor
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		prev := from
		if err := r.Transitions.Append(ctx, &loan.StatusTransition{
			EventID:    id.NewID32(),
			LoanID:     l.ID,
			FromStatus: &prev,
			ToStatus:   in.To,
			ActorID:    in.Actor,
			Reason:     strings.TrimSpace(in.Reason),
			Notes:      in.Notes,
			ChangedAt:  now,
		}); err != nil {
			return err
		}
		out = l
		return nil
	})
	if u.metrics != nil {
		u.metrics.ObserveTransition(start)
	}
	if err != nil {
		if u.metrics != nil {
			u.metrics.IncTransitionRejected(errs.KindOf(err).String())
		}
		u.logger.WarnContext(ctx, "loan transition rejected",
			"loan_id", in.LoanID, "to", in.To, "actor", in.Actor, "error", err)
		return nil, err
	}

	u.logger.InfoContext(ctx, "loan transitioned",
		"loan_number", out.LoanNumber, "from", from, "to", out.Status, "actor", in.Actor)
	if u.metrics != nil {
		u.metrics.IncTransition(string(out.Status))
	}
	return out, nil
}
