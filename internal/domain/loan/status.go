package loan

import (
	"time"

	"mortgage-backend/internal/domain/errs"
)

type Status string

const (
	StatusDraft                  Status = "DRAFT"
	StatusApplicationStarted     Status = "APPLICATION_STARTED"
	StatusSubmitted              Status = "SUBMITTED"
	StatusDocumentCollection     Status = "DOCUMENT_COLLECTION"
	StatusUnderReview            Status = "UNDER_REVIEW"
	StatusPreUnderwriting        Status = "PRE_UNDERWRITING"
	StatusPreApproved            Status = "PRE_APPROVED"
	StatusApproved               Status = "APPROVED"
	StatusApprovedWithConditions Status = "APPROVED_WITH_CONDITIONS"
	StatusClearToClose           Status = "CLEAR_TO_CLOSE"
	StatusClosing                Status = "CLOSING"
	StatusFunded                 Status = "FUNDED"
	StatusClosed                 Status = "CLOSED"
	StatusDenied                 Status = "DENIED"
	StatusWithdrawn              Status = "WITHDRAWN"
	StatusCancelled              Status = "CANCELLED"
)

// InitialStatus is where every new loan starts.
const InitialStatus = StatusApplicationStarted

// Statuses lists every status in pipeline order.
var Statuses = []Status{
	StatusDraft, StatusApplicationStarted, StatusSubmitted, StatusDocumentCollection,
	StatusUnderReview, StatusPreUnderwriting, StatusPreApproved, StatusApproved,
	StatusApprovedWithConditions, StatusClearToClose, StatusClosing, StatusFunded,
	StatusClosed, StatusDenied, StatusWithdrawn, StatusCancelled,
}

// legal edges; terminal statuses have none
var transitions = map[Status][]Status{
	StatusDraft:                  {StatusApplicationStarted, StatusWithdrawn},
	StatusApplicationStarted:     {StatusSubmitted, StatusWithdrawn},
	StatusSubmitted:              {StatusDocumentCollection, StatusUnderReview, StatusDenied, StatusWithdrawn},
	StatusDocumentCollection:     {StatusUnderReview, StatusPreUnderwriting, StatusDenied, StatusWithdrawn},
	StatusUnderReview:            {StatusPreUnderwriting, StatusDenied, StatusWithdrawn},
	StatusPreUnderwriting:        {StatusPreApproved, StatusDenied, StatusWithdrawn},
	StatusPreApproved:            {StatusApproved, StatusApprovedWithConditions, StatusDenied, StatusWithdrawn},
	StatusApproved:               {StatusClearToClose, StatusApprovedWithConditions, StatusDenied, StatusWithdrawn},
	StatusApprovedWithConditions: {StatusClearToClose, StatusDenied, StatusWithdrawn},
	StatusClearToClose:           {StatusClosing, StatusCancelled},
	StatusClosing:                {StatusFunded, StatusClosed, StatusCancelled},
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusFunded, StatusClosed, StatusDenied, StatusWithdrawn, StatusCancelled:
		return true
	}
	return false
}

// RequiresReason marks the rejection outcomes that must carry a reason.
func (s Status) RequiresReason() bool {
	return s == StatusDenied || s == StatusCancelled
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the legal targets from s. The slice is a copy.
func (s Status) NextStatuses() []Status {
	return append([]Status(nil), transitions[s]...)
}

// CheckTransition applies the structural rules: unknown target, self-edge,
// terminal source, missing edge. Leaving a terminal status is reported as
// IllegalTransition caused by TerminalState.
func CheckTransition(from, to Status) error {
	switch {
	case !to.Valid():
		return errs.New(errs.ValidationFailure, "unknown loan status %q", to)
	case from.IsTerminal():
		return errs.Wrap(
			errs.New(errs.TerminalState, "loan status %s is terminal", from),
			errs.IllegalTransition,
			"cannot transition from "+string(from)+" to "+string(to),
		)
	case from == to:
		return errs.New(errs.IllegalTransition, "loan is already %s", from)
	case !from.CanTransitionTo(to):
		return errs.New(errs.IllegalTransition, "cannot transition from %s to %s", from, to)
	}
	return nil
}

// StampMilestone sets the milestone date tied to reaching s, leaving dates
// that are already set untouched.
func (l *Loan) StampMilestone(s Status, at time.Time) {
	stamp := func(p **time.Time) {
		if *p == nil {
			t := at
			*p = &t
		}
	}
	switch s {
	case StatusPreApproved:
		stamp(&l.PreApprovalDate)
	case StatusApproved, StatusApprovedWithConditions:
		stamp(&l.ApprovalDate)
	case StatusClearToClose:
		stamp(&l.ClearToCloseDate)
	case StatusClosing, StatusClosed:
		stamp(&l.ClosingDate)
	case StatusFunded:
		stamp(&l.FundedDate)
	}
}
