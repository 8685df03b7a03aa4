package condition

import (
	"time"

	"mortgage-backend/internal/domain/errs"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusWaived     Status = "WAIVED"
	StatusExpired    Status = "EXPIRED"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusWaived, StatusExpired}

var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusCompleted, StatusWaived, StatusExpired},
	StatusInProgress: {StatusCompleted, StatusWaived, StatusExpired},
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsActive: still open work.
func (s Status) IsActive() bool { return s == StatusPending || s == StatusInProgress }

func (s Status) IsSatisfied() bool { return s == StatusCompleted || s == StatusWaived }

// IsFrozen: no status change leaves s.
func (s Status) IsFrozen() bool { return len(transitions[s]) == 0 }

func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition rejects edges out of frozen statuses with TerminalState and
// any other missing edge with IllegalTransition.
func CheckTransition(from, to Status) error {
	switch {
	case !to.Valid():
		return errs.New(errs.ValidationFailure, "unknown condition status %q", to)
	case from.IsFrozen():
		return errs.New(errs.TerminalState, "condition is %s", from)
	case !from.CanTransitionTo(to):
		return errs.New(errs.IllegalTransition, "cannot move condition from %s to %s", from, to)
	}
	return nil
}

// MoveTo applies a checked status change, stamping CompletedDate when the new
// status is satisfied.
func (c *Condition) MoveTo(to Status, actor string, at time.Time) error {
	if err := CheckTransition(c.Status, to); err != nil {
		return err
	}
	c.Status = to
	if to.IsSatisfied() {
		t := at
		c.CompletedDate = &t
	}
	c.LastModifiedBy = actor
	return nil
}

// CanDelete: only open conditions may be removed.
func (c *Condition) CanDelete() error {
	if !c.Status.IsActive() {
		return errs.New(errs.IllegalDeletion, "condition %d is %s", c.ID, c.Status)
	}
	return nil
}
