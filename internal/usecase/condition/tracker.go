package condition

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"mortgage-backend/internal/domain/condition"
	"mortgage-backend/internal/domain/errs"
	"mortgage-backend/internal/domain/loan"
	"mortgage-backend/internal/domain/uow"
	"mortgage-backend/internal/domain/user"
	"mortgage-backend/internal/infrastructure/metrics"
	"mortgage-backend/pkg/clock"
)

// Tracker owns condition state. Every mutation runs in a unit of work with
// the condition row locked; creation locks the owning loan instead.
type Tracker struct {
	loans      loan.Repository
	conditions condition.Repository
	users      user.Directory
	uow        uow.UnitOfWork
	clock      clock.Clock
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(t *Tracker)

func WithLogger(l *slog.Logger) Option { return func(t *Tracker) { t.logger = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(t *Tracker) { t.metrics = m } }

func WithClock(c clock.Clock) Option { return func(t *Tracker) { t.clock = c } }

func NewTracker(loans loan.Repository, conditions condition.Repository, users user.Directory, tx uow.UnitOfWork, opts ...Option) *Tracker {
	t := &Tracker{
		loans:      loans,
		conditions: conditions,
		users:      users,
		uow:        tx,
		clock:      clock.System(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Create(ctx context.Context, in CreateConditionInput) (*condition.Condition, error) {
	if in.Priority == "" {
		in.Priority = condition.PriorityMedium
	}
	switch {
	case strings.TrimSpace(in.Actor) == "":
		return nil, errs.New(errs.ValidationFailure, "actor is required")
	case !in.Type.Valid():
		return nil, errs.New(errs.ValidationFailure, "unknown condition type %q", in.Type)
	case strings.TrimSpace(in.Title) == "":
		return nil, errs.New(errs.ValidationFailure, "title is required")
	case !in.Priority.Valid():
		return nil, errs.New(errs.ValidationFailure, "unknown priority %q", in.Priority)
	}
	if in.AssigneeID != nil {
		if _, err := t.activeUser(ctx, *in.AssigneeID); err != nil {
			return nil, err
		}
	}

	c := &condition.Condition{
		LoanID:         in.LoanID,
		Type:           in.Type,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Priority:       in.Priority,
		Status:         condition.StatusPending,
		AssigneeID:     in.AssigneeID,
		DueDate:        in.DueDate,
		Comments:       in.Comments,
		InternalNotes:  in.InternalNotes,
		CreatedBy:      in.Actor,
		LastModifiedBy: in.Actor,
	}
	err := t.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status.IsTerminal() {
			return errs.New(errs.TerminalState, "loan %s is %s", l.LoanNumber, l.Status)
		}
		return r.Conditions.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	t.done(ctx, "create", c, in.Actor)
	return c, nil
}

// Update patches descriptive fields. Status never changes here.
func (t *Tracker) Update(ctx context.Context, id uint64, in UpdateConditionInput) (*condition.Condition, error) {
	switch {
	case in.Type != nil && !in.Type.Valid():
		return nil, errs.New(errs.ValidationFailure, "unknown condition type %q", *in.Type)
	case in.Priority != nil && !in.Priority.Valid():
		return nil, errs.New(errs.ValidationFailure, "unknown priority %q", *in.Priority)
	case in.Title != nil && strings.TrimSpace(*in.Title) == "":
		return nil, errs.New(errs.ValidationFailure, "title must not be blank")
	}
	return t.mutate(ctx, id, "update", in.Actor, func(c *condition.Condition, _ time.Time) error {
		if in.Status != nil && *in.Status != c.Status {
			if c.Status.IsFrozen() {
				return errs.New(errs.TerminalState, "condition %d is %s", c.ID, c.Status)
			}
			return errs.New(errs.ValidationFailure, "status cannot be changed by update; use start, complete, waive or expire")
		}
		if in.Type != nil {
			c.Type = *in.Type
		}
		if in.Title != nil {
			c.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			c.Description = *in.Description
		}
		if in.Priority != nil {
			c.Priority = *in.Priority
		}
		if in.DueDate != nil {
			c.DueDate = in.DueDate
		}
		if in.Comments != nil {
			c.Comments = *in.Comments
		}
		if in.InternalNotes != nil {
			c.InternalNotes = *in.InternalNotes
		}
		c.LastModifiedBy = in.Actor
		return nil
	})
}

// Start marks pending work as picked up.
func (t *Tracker) Start(ctx context.Context, id uint64, actor string) (*condition.Condition, error) {
	return t.mutate(ctx, id, "start", actor, func(c *condition.Condition, now time.Time) error {
		return c.MoveTo(condition.StatusInProgress, actor, now)
	})
}

func (t *Tracker) Complete(ctx context.Context, id uint64, actor, notes string) (*condition.Condition, error) {
	return t.mutate(ctx, id, "complete", actor, func(c *condition.Condition, now time.Time) error {
		if err := c.MoveTo(condition.StatusCompleted, actor, now); err != nil {
			return err
		}
		c.AppendComment(strings.TrimSpace(notes))
		return nil
	})
}

func (t *Tracker) Waive(ctx context.Context, id uint64, actor, reason string) (*condition.Condition, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errs.New(errs.MissingReason, "a reason is required to waive a condition")
	}
	return t.mutate(ctx, id, "waive", actor, func(c *condition.Condition, now time.Time) error {
		if err := c.MoveTo(condition.StatusWaived, actor, now); err != nil {
			return err
		}
		c.AppendComment("WAIVED: " + reason)
		return nil
	})
}

// Expire is the ingress used by the overdue sweep. It never sets CompletedDate.
func (t *Tracker) Expire(ctx context.Context, id uint64, actor string) (*condition.Condition, error) {
	return t.mutate(ctx, id, "expire", actor, func(c *condition.Condition, now time.Time) error {
		return c.MoveTo(condition.StatusExpired, actor, now)
	})
}

// ExpireOverdue expires every active condition due before now. Conditions
// that changed underneath the sweep are skipped, not failed.
func (t *Tracker) ExpireOverdue(ctx context.Context, actor string) ([]condition.Condition, error) {
	now := t.clock.Now()
	overdue, err := t.conditions.ListOverdue(ctx, now)
	if err != nil {
		return nil, err
	}
	expired := make([]condition.Condition, 0, len(overdue))
	for _, o := range overdue {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		c, err := t.mutate(ctx, o.ID, "expire", actor, func(c *condition.Condition, at time.Time) error {
			if !c.IsOverdue(now) {
				return errs.New(errs.Conflict, "condition %d is no longer overdue", c.ID)
			}
			return c.MoveTo(condition.StatusExpired, actor, at)
		})
		switch {
		case err == nil:
			expired = append(expired, *c)
		case errs.Has(err, errs.Conflict), errs.Has(err, errs.TerminalState), errs.Has(err, errs.NotFound):
			t.logger.InfoContext(ctx, "condition skipped by sweep", "condition_id", o.ID, "error", err)
		default:
			return expired, err
		}
	}
	if t.metrics != nil {
		t.metrics.AddConditionsExpired(len(expired))
	}
	t.logger.InfoContext(ctx, "overdue conditions expired", "count", len(expired), "actor", actor)
	return expired, nil
}

func (t *Tracker) Assign(ctx context.Context, id uint64, userID, actor string) (*condition.Condition, error) {
	assignee, err := t.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return t.mutate(ctx, id, "assign", actor, func(c *condition.Condition, _ time.Time) error {
		uid := assignee.UserID
		c.AssigneeID = &uid
		c.LastModifiedBy = actor
		return nil
	})
}

func (t *Tracker) SetPriority(ctx context.Context, id uint64, p condition.Priority, actor string) (*condition.Condition, error) {
	if !p.Valid() {
		return nil, errs.New(errs.ValidationFailure, "unknown priority %q", p)
	}
	return t.mutate(ctx, id, "set_priority", actor, func(c *condition.Condition, _ time.Time) error {
		c.Priority = p
		c.LastModifiedBy = actor
		return nil
	})
}

// Delete removes a pending or in-progress condition.
func (t *Tracker) Delete(ctx context.Context, id uint64, actor string) error {
	if strings.TrimSpace(actor) == "" {
		return errs.New(errs.ValidationFailure, "actor is required")
	}
	var deleted *condition.Condition
	err := t.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Conditions.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := c.CanDelete(); err != nil {
			return err
		}
		deleted = c
		return r.Conditions.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	t.done(ctx, "delete", deleted, actor)
	return nil
}

func (t *Tracker) Get(ctx context.Context, id uint64) (*condition.Condition, error) {
	return t.conditions.GetByID(ctx, id)
}

// ListByLoan returns the loan's conditions, most urgent first.
func (t *Tracker) ListByLoan(ctx context.Context, loanID uint64) ([]condition.Condition, error) {
	if _, err := t.loans.GetByID(ctx, loanID); err != nil {
		return nil, err
	}
	return t.conditions.ListByLoan(ctx, loanID)
}

// AllSatisfied is true iff every condition of the loan is completed or waived.
func (t *Tracker) AllSatisfied(ctx context.Context, loanID uint64) (bool, error) {
	cs, err := t.ListByLoan(ctx, loanID)
	if err != nil {
		return false, err
	}
	return condition.AllSatisfied(cs), nil
}

// ListOverdue returns active conditions due before the tracker's now.
func (t *Tracker) ListOverdue(ctx context.Context) ([]condition.Condition, error) {
	return t.conditions.ListOverdue(ctx, t.clock.Now())
}

func (t *Tracker) Summarize(ctx context.Context, loanID uint64) (*Summary, error) {
	cs, err := t.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	active, err := t.conditions.CountActiveByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	s := &Summary{
		LoanID:       loanID,
		Total:        len(cs),
		ByStatus:     make(map[condition.Status]int, len(condition.Statuses)),
		Outstanding:  active,
		AllSatisfied: condition.AllSatisfied(cs),
	}
	for _, c := range cs {
		s.ByStatus[c.Status]++
	}
	return s, nil
}

func (t *Tracker) mutate(ctx context.Context, id uint64, op, actor string, fn func(c *condition.Condition, now time.Time) error) (*condition.Condition, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, errs.New(errs.ValidationFailure, "actor is required")
	}
	var out *condition.Condition
	err := t.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Conditions.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(c, t.clock.Now()); err != nil {
			return err
		}
		if err := r.Conditions.Save(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	t.done(ctx, op, out, actor)
	return out, nil
}

func (t *Tracker) activeUser(ctx context.Context, userID string) (*user.User, error) {
	u, err := t.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, errs.New(errs.ValidationFailure, "user %s is inactive", u.UserID)
	}
	return u, nil
}

func (t *Tracker) done(ctx context.Context, op string, c *condition.Condition, actor string) {
	t.logger.InfoContext(ctx, "condition "+op,
		"condition_id", c.ID, "loan_id", c.LoanID, "status", c.Status, "actor", actor)
	if t.metrics != nil {
		t.metrics.IncConditionOp(op)
	}
}
