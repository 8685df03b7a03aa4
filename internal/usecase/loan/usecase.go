package loan

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"mortgage-backend/internal/domain/errs"
	"mortgage-backend/internal/domain/loan"
	"mortgage-backend/internal/domain/uow"
	"mortgage-backend/internal/domain/user"
	"mortgage-backend/internal/infrastructure/metrics"
	"mortgage-backend/pkg/clock"
	"mortgage-backend/pkg/id"
)

type Usecase struct {
	loans       loan.Repository
	transitions loan.TransitionRepository
	users       user.Directory
	uow         uow.UnitOfWork
	guard       Guard
	numbers     *id.LoanNumberGenerator
	clock       clock.Clock
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(u *Usecase)

func WithLogger(l *slog.Logger) Option { return func(u *Usecase) { u.logger = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(u *Usecase) { u.metrics = m } }

func WithClock(c clock.Clock) Option { return func(u *Usecase) { u.clock = c } }

func WithLoanNumbers(g *id.LoanNumberGenerator) Option { return func(u *Usecase) { u.numbers = g } }

func WithGuard(g Guard) Option { return func(u *Usecase) { u.guard = g } }

// NewUsecase: reads go through loans/transitions, every write through tx.
func NewUsecase(loans loan.Repository, transitions loan.TransitionRepository, users user.Directory, tx uow.UnitOfWork, opts ...Option) *Usecase {
	u := &Usecase{
		loans:       loans,
		transitions: transitions,
		users:       users,
		uow:         tx,
		guard:       DefaultGuard(),
		clock:       clock.System(),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.numbers == nil {
		u.numbers = id.NewLoanNumberGenerator(u.clock)
	}
	return u
}

// Create starts a loan in the initial status with derived metrics and the
// creation record (from-status nil), atomically.
func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (*loan.Loan, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	now := u.clock.Now()
	l := &loan.Loan{
		LoanType:               in.LoanType,
		LoanAmount:             in.LoanAmount,
		InterestRate:           in.InterestRate,
		TermMonths:             in.TermMonths,
		Status:                 loan.InitialStatus,
		ApplicationDate:        now,
		ExpectedClosingDate:    in.ExpectedClosingDate,
		PropertyValue:          in.PropertyValue,
		PurchasePrice:          in.PurchasePrice,
		DownPayment:            in.DownPayment,
		BorrowerAnnualIncome:   in.BorrowerAnnualIncome,
		CoBorrowerAnnualIncome: in.CoBorrowerAnnualIncome,
		Borrower:               in.Borrower,
		Property:               in.Property,
		Notes:                  in.Notes,
		CreatedBy:              in.Actor,
		LastModifiedBy:         in.Actor,
	}
	if in.CoBorrower != nil {
		l.CoBorrower = *in.CoBorrower
	}
	l.ApplyMetrics(loan.Calculate(l.MetricInputs()))

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		number, err := u.numbers.Next(ctx, u.numberTaken(r.Loans))
		if err != nil {
			if errors.Is(err, id.ErrLoanNumbersExhausted) {
				return errs.Wrap(err, errs.Conflict, "no loan number available")
			}
			return err
		}
		l.LoanNumber = number
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		return r.Transitions.Append(ctx, &loan.StatusTransition{
			EventID:   id.NewID32(),
			LoanID:    l.ID,
			ToStatus:  l.Status,
			ActorID:   in.Actor,
			Notes:     "loan created",
			ChangedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	u.logger.InfoContext(ctx, "loan created",
		"loan_number", l.LoanNumber, "loan_type", l.LoanType, "actor", in.Actor)
	if u.metrics != nil {
		u.metrics.IncLoanCreated()
	}
	return l, nil
}

func (u *Usecase) numberTaken(loans loan.Repository) id.ExistsFunc {
	return func(ctx context.Context, n string) (bool, error) {
		taken, err := loans.ExistsByLoanNumber(ctx, n)
		if taken && u.metrics != nil {
			u.metrics.IncLoanNumberCollision()
		}
		return taken, err
	}
}

// Update patches inputs and re-derives metrics in the same write.
func (u *Usecase) Update(ctx context.Context, loanID uint64, in UpdateLoanInput) (*loan.Loan, error) {
	if err := validateUpdate(in); err != nil {
		return nil, err
	}
	var out *loan.Loan
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status.IsTerminal() {
			return errs.New(errs.TerminalState, "loan %s is %s", l.LoanNumber, l.Status)
		}
		applyPatch(l, in)
		if in.touchesMetrics() {
			l.ApplyMetrics(loan.Calculate(l.MetricInputs()))
		}
		l.LastModifiedBy = in.Actor
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.logger.InfoContext(ctx, "loan updated", "loan_number", out.LoanNumber, "actor", in.Actor)
	return out, nil
}

func applyPatch(l *loan.Loan, in UpdateLoanInput) {
	if in.LoanType != nil {
		l.LoanType = *in.LoanType
	}
	if in.LoanAmount != nil {
		l.LoanAmount = *in.LoanAmount
	}
	if in.InterestRate != nil {
		l.InterestRate = *in.InterestRate
	}
	if in.TermMonths != nil {
		l.TermMonths = *in.TermMonths
	}
	if in.PropertyValue != nil {
		l.PropertyValue = in.PropertyValue
	}
	if in.PurchasePrice != nil {
		l.PurchasePrice = in.PurchasePrice
	}
	if in.DownPayment != nil {
		l.DownPayment = in.DownPayment
	}
	if in.BorrowerAnnualIncome != nil {
		l.BorrowerAnnualIncome = in.BorrowerAnnualIncome
	}
	if in.CoBorrowerAnnualIncome != nil {
		l.CoBorrowerAnnualIncome = in.CoBorrowerAnnualIncome
	}
	if in.ExpectedClosingDate != nil {
		l.ExpectedClosingDate = in.ExpectedClosingDate
	}
	if in.Borrower != nil {
		l.Borrower = *in.Borrower
	}
	if in.CoBorrower != nil {
		l.CoBorrower = *in.CoBorrower
	}
	if in.Property != nil {
		l.Property = *in.Property
	}
	if in.Notes != nil {
		l.Notes = *in.Notes
	}
	if in.InternalNotes != nil {
		l.InternalNotes = *in.InternalNotes
	}
}

func (u *Usecase) Get(ctx context.Context, loanID uint64) (*loan.Loan, error) {
	return u.loans.GetByID(ctx, loanID)
}

func (u *Usecase) GetByLoanNumber(ctx context.Context, loanNumber string) (*loan.Loan, error) {
	if !id.ValidLoanNumber(loanNumber) {
		return nil, errs.New(errs.ValidationFailure, "malformed loan number %q", loanNumber)
	}
	return u.loans.GetByLoanNumber(ctx, loanNumber)
}

// History returns the loan's transition records, oldest first.
func (u *Usecase) History(ctx context.Context, loanID uint64) ([]loan.StatusTransition, error) {
	if _, err := u.loans.GetByID(ctx, loanID); err != nil {
		return nil, err
	}
	return u.transitions.ListByLoan(ctx, loanID)
}

// NextStatuses lists the legal targets from the loan's current status.
func (u *Usecase) NextStatuses(ctx context.Context, loanID uint64) ([]loan.Status, error) {
	l, err := u.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return l.Status.NextStatuses(), nil
}

// AssignStaff fills one of the loan's staff slots with an active staff user.
func (u *Usecase) AssignStaff(ctx context.Context, in AssignStaffInput) (*loan.Loan, error) {
	if in.Actor == "" {
		return nil, errs.New(errs.ValidationFailure, "actor is required")
	}
	switch in.Role {
	case StaffLoanOfficer, StaffProcessor, StaffUnderwriter:
	default:
		return nil, errs.New(errs.ValidationFailure, "unknown staff role %q", in.Role)
	}
	staff, err := u.users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !staff.Active {
		return nil, errs.New(errs.ValidationFailure, "user %s is inactive", staff.UserID)
	}
	if !staff.Role.IsStaff() {
		return nil, errs.New(errs.ValidationFailure, "user %s is not staff", staff.UserID)
	}

	var out *loan.Loan
	err = u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status.IsTerminal() {
			return errs.New(errs.TerminalState, "loan %s is %s", l.LoanNumber, l.Status)
		}
		userID := staff.UserID
		switch in.Role {
		case StaffLoanOfficer:
			l.LoanOfficerID = &userID
		case StaffProcessor:
			l.ProcessorID = &userID
		case StaffUnderwriter:
			l.UnderwriterID = &userID
		}
		l.LastModifiedBy = in.Actor
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.logger.InfoContext(ctx, "staff assigned",
		"loan_number", out.LoanNumber, "role", in.Role, "user_id", staff.UserID, "actor", in.Actor)
	return out, nil
}

func validateCreate(in CreateLoanInput) error {
	switch {
	case strings.TrimSpace(in.Actor) == "":
		return errs.New(errs.ValidationFailure, "actor is required")
	case !in.LoanType.Valid():
		return errs.New(errs.ValidationFailure, "unknown loan type %q", in.LoanType)
	case in.LoanAmount.IsNegative():
		return errs.New(errs.ValidationFailure, "loan amount must not be negative")
	case in.InterestRate.IsNegative():
		return errs.New(errs.ValidationFailure, "interest rate must not be negative")
	case in.TermMonths < 0:
		return errs.New(errs.ValidationFailure, "term must not be negative")
	}
	return checkNonNegative(map[string]*decimal.Decimal{
		"property value":            in.PropertyValue,
		"purchase price":            in.PurchasePrice,
		"down payment":              in.DownPayment,
		"borrower annual income":    in.BorrowerAnnualIncome,
		"co-borrower annual income": in.CoBorrowerAnnualIncome,
	})
}

func validateUpdate(in UpdateLoanInput) error {
	switch {
	case strings.TrimSpace(in.Actor) == "":
		return errs.New(errs.ValidationFailure, "actor is required")
	case in.LoanType != nil && !in.LoanType.Valid():
		return errs.New(errs.ValidationFailure, "unknown loan type %q", *in.LoanType)
	case in.TermMonths != nil && *in.TermMonths < 0:
		return errs.New(errs.ValidationFailure, "term must not be negative")
	}
	return checkNonNegative(map[string]*decimal.Decimal{
		"loan amount":               in.LoanAmount,
		"interest rate":             in.InterestRate,
		"property value":            in.PropertyValue,
		"purchase price":            in.PurchasePrice,
		"down payment":              in.DownPayment,
		"borrower annual income":    in.BorrowerAnnualIncome,
		"co-borrower annual income": in.CoBorrowerAnnualIncome,
	})
}

func checkNonNegative(fields map[string]*decimal.Decimal) error {
	for name, v := range fields {
		if v != nil && v.IsNegative() {
			return errs.New(errs.ValidationFailure, "%s must not be negative", name)
		}
	}
	return nil
}
