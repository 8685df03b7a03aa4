// Package memstore is an in-memory persistence collaborator for use case
// tests. Transactions are serialized by one lock and rolled back through an
// undo log, so a failing unit of work leaves no trace.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"mortgage-backend/internal/domain/condition"
	"mortgage-backend/internal/domain/errs"
	"mortgage-backend/internal/domain/loan"
	"mortgage-backend/internal/domain/uow"
	"mortgage-backend/internal/domain/user"
)

var (
	_ uow.UnitOfWork            = (*Store)(nil)
	_ user.Directory            = (*Store)(nil)
	_ loan.Repository           = (*LoanRepo)(nil)
	_ loan.TransitionRepository = (*TransitionRepo)(nil)
	_ condition.Repository      = (*ConditionRepo)(nil)
)

type Store struct {
	txMu sync.Mutex // one unit of work at a time
	mu   sync.Mutex // guards the maps below

	loans       map[uint64]loan.Loan
	loanNumbers map[string]uint64
	transitions map[uint64][]loan.StatusTransition
	conditions  map[uint64]condition.Condition
	users       map[string]user.User

	nextLoanID, nextConditionID, nextTransitionID uint64
}

func New() *Store {
	return &Store{
		loans:       make(map[uint64]loan.Loan),
		loanNumbers: make(map[string]uint64),
		transitions: make(map[uint64][]loan.StatusTransition),
		conditions:  make(map[uint64]condition.Condition),
		users:       make(map[string]user.User),
	}
}

// tx carries the undo log of one unit of work; nil outside a transaction.
type tx struct{ undo []func() }

func (t *tx) record(fn func()) {
	if t != nil {
		t.undo = append(t.undo, fn)
	}
}

func (s *Store) repos(t *tx) uow.Repos {
	return uow.Repos{
		Loans:       &LoanRepo{s: s, tx: t},
		Transitions: &TransitionRepo{s: s, tx: t},
		Conditions:  &ConditionRepo{s: s, tx: t},
	}
}

// Loans, Transitions and Conditions are non-transactional views.
func (s *Store) Loans() *LoanRepo { return &LoanRepo{s: s} }
func (s *Store) Transitions() *TransitionRepo { return &TransitionRepo{s: s} }
func (s *Store) Conditions() *ConditionRepo { return &ConditionRepo{s: s} }

func (s *Store) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.run(ctx, func(t *tx) error { return fn(s.repos(t)) })
}

func (s *Store) WithinLoanTx(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.run(ctx, func(t *tx) error {
		r := s.repos(t)
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}

func (s *Store) run(ctx context.Context, fn func(t *tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := &tx{}
	if err := fn(t); err != nil {
		s.mu.Lock()
		for i := len(t.undo) - 1; i >= 0; i-- {
			t.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// ---- users ----

// PutUser seeds the directory.
func (s *Store) PutUser(u user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UserID] = u
}

func (s *Store) FindByID(_ context.Context, userID string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, errs.New(errs.NotFound, "user %s not found", userID)
	}
	return &u, nil
}

func (s *Store) FindByIdentifier(ctx context.Context, ident string) (*user.User, error) {
	s.mu.Lock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, ident) {
			s.mu.Unlock()
			return &u, nil
		}
	}
	s.mu.Unlock()
	return s.FindByID(ctx, ident)
}

// ---- loans ----

type LoanRepo struct {
	s  *Store
	tx *tx
}

func (r *LoanRepo) Create(_ context.Context, l *loan.Loan) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.loanNumbers[l.LoanNumber]; dup {
		return errs.New(errs.Conflict, "loan number %s already exists", l.LoanNumber)
	}
	s.nextLoanID++
	l.ID = s.nextLoanID
	if l.Version == 0 {
		l.Version = 1
	}
	now := time.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now
	s.loans[l.ID] = *l
	s.loanNumbers[l.LoanNumber] = l.ID
	id, number := l.ID, l.LoanNumber
	r.tx.record(func() {
		delete(s.loans, id)
		delete(s.loanNumbers, number)
	})
	return nil
}

func (r *LoanRepo) GetByID(_ context.Context, id uint64) (*loan.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.loans[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "loan %d not found", id)
	}
	return &l, nil
}

// GetByIDForUpdate relies on the store-wide transaction lock.
func (r *LoanRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*loan.Loan, error) {
	return r.GetByID(ctx, id)
}

func (r *LoanRepo) GetByLoanNumber(ctx context.Context, loanNumber string) (*loan.Loan, error) {
	r.s.mu.Lock()
	id, ok := r.s.loanNumbers[loanNumber]
	r.s.mu.Unlock()
	if !ok {
		return nil, errs.New(errs.NotFound, "loan %s not found", loanNumber)
	}
	return r.GetByID(ctx, id)
}

func (r *LoanRepo) ExistsByLoanNumber(_ context.Context, loanNumber string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.loanNumbers[loanNumber]
	return ok, nil
}

// Save bumps Version and fails with Conflict if the caller's copy is stale.
func (r *LoanRepo) Save(_ context.Context, l *loan.Loan) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.loans[l.ID]
	if !ok {
		return errs.New(errs.NotFound, "loan %d not found", l.ID)
	}
	if prev.Version != l.Version {
		return errs.New(errs.Conflict, "loan %s was modified concurrently", l.LoanNumber)
	}
	l.Version++
	l.UpdatedAt = time.Now().UTC()
	s.loans[l.ID] = *l
	r.tx.record(func() { s.loans[prev.ID] = prev })
	return nil
}

// Count is a test helper.
func (r *LoanRepo) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.loans)
}

// ---- transitions ----

type TransitionRepo struct {
	s  *Store
	tx *tx
}

func (r *TransitionRepo) Append(_ context.Context, t *loan.StatusTransition) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loans[t.LoanID]; !ok {
		return errs.New(errs.NotFound, "loan %d not found", t.LoanID)
	}
	s.nextTransitionID++
	t.ID = s.nextTransitionID
	s.transitions[t.LoanID] = append(s.transitions[t.LoanID], *t)
	loanID := t.LoanID
	r.tx.record(func() {
		list := s.transitions[loanID]
		s.transitions[loanID] = list[:len(list)-1]
	})
	return nil
}

func (r *TransitionRepo) ListByLoan(_ context.Context, loanID uint64) ([]loan.StatusTransition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]loan.StatusTransition(nil), r.s.transitions[loanID]...), nil
}

// ---- conditions ----

type ConditionRepo struct {
	s  *Store
	tx *tx
}

func (r *ConditionRepo) Create(_ context.Context, c *condition.Condition) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loans[c.LoanID]; !ok {
		return errs.New(errs.NotFound, "loan %d not found", c.LoanID)
	}
	s.nextConditionID++
	c.ID = s.nextConditionID
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	s.conditions[c.ID] = *c
	id := c.ID
	r.tx.record(func() { delete(s.conditions, id) })
	return nil
}

func (r *ConditionRepo) GetByID(_ context.Context, id uint64) (*condition.Condition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.conditions[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "condition %d not found", id)
	}
	return &c, nil
}

func (r *ConditionRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*condition.Condition, error) {
	return r.GetByID(ctx, id)
}

func (r *ConditionRepo) Save(_ context.Context, c *condition.Condition) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.conditions[c.ID]
	if !ok {
		return errs.New(errs.NotFound, "condition %d not found", c.ID)
	}
	c.UpdatedAt = time.Now().UTC()
	s.conditions[c.ID] = *c
	r.tx.record(func() { s.conditions[prev.ID] = prev })
	return nil
}

func (r *ConditionRepo) Delete(_ context.Context, id uint64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.conditions[id]
	if !ok {
		return errs.New(errs.NotFound, "condition %d not found", id)
	}
	delete(s.conditions, id)
	r.tx.record(func() { s.conditions[id] = prev })
	return nil
}

func (r *ConditionRepo) ListByLoan(_ context.Context, loanID uint64) ([]condition.Condition, error) {
	r.s.mu.Lock()
	var out []condition.Condition
	for _, c := range r.s.conditions {
		if c.LoanID == loanID {
			out = append(out, c)
		}
	}
	r.s.mu.Unlock()
	condition.SortByPriority(out)
	return out, nil
}

func (r *ConditionRepo) CountActiveByLoan(_ context.Context, loanID uint64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, c := range r.s.conditions {
		if c.LoanID == loanID && c.Status.IsActive() {
			n++
		}
	}
	return n, nil
}

func (r *ConditionRepo) ListOverdue(_ context.Context, now time.Time) ([]condition.Condition, error) {
	r.s.mu.Lock()
	var out []condition.Condition
	for _, c := range r.s.conditions {
		if c.IsOverdue(now) {
			out = append(out, c)
		}
	}
	r.s.mu.Unlock()
	// stable order for callers
	slices.SortFunc(out, func(a, b condition.Condition) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}
