package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mortgage-backend/internal/domain/errs"
	loanDomain "mortgage-backend/internal/domain/loan"
)

var _ loanDomain.Repository = (*LoanRepository)(nil)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	if l.Version == 0 {
		l.Version = 1
	}
	return translate(r.db.WithContext(ctx).Create(l).Error, "loan %s", l.LoanNumber)
}

// Save writes every column guarded by the version the caller read. A stale
// copy gets Conflict and keeps its version.
func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	read := l.Version
	l.Version = read + 1
	res := r.db.WithContext(ctx).
		Model(l).
		Where("version = ?", read).
		Select("*").
		Omit("id", "loan_number", "created_by", "created_at").
		Updates(l)
	if res.Error != nil {
		l.Version = read
		return translate(res.Error, "loan %s", l.LoanNumber)
	}
	if res.RowsAffected == 0 {
		l.Version = read
		var n int64
		if err := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).Where("id = ?", l.ID).Count(&n).Error; err != nil {
			return translate(err, "loan %d", l.ID)
		}
		if n == 0 {
			return errs.New(errs.NotFound, "loan %d not found", l.ID)
		}
		return errs.New(errs.Conflict, "loan %s was modified concurrently", l.LoanNumber)
	}
	return nil
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	if err := r.db.WithContext(ctx).First(&out, id).Error; err != nil {
		return nil, translate(err, "loan %d", id)
	}
	return &out, nil
}

// GetByIDForUpdate takes SELECT ... FOR UPDATE; call it inside a transaction.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&out, id).Error
	if err != nil {
		return nil, translate(err, "loan %d", id)
	}
	return &out, nil
}

func (r *LoanRepository) GetByLoanNumber(ctx context.Context, loanNumber string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	if err := r.db.WithContext(ctx).Where("loan_number = ?", loanNumber).First(&out).Error; err != nil {
		return nil, translate(err, "loan %s", loanNumber)
	}
	return &out, nil
}

func (r *LoanRepository) ExistsByLoanNumber(ctx context.Context, loanNumber string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Where("loan_number = ?", loanNumber).
		Limit(1).
		Count(&n).Error
	if err != nil {
		return false, translate(err, "loan %s", loanNumber)
	}
	return n > 0, nil
}
