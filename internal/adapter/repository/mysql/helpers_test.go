package mysql

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mortgage-backend/internal/domain/loan"
	infradb "mortgage-backend/internal/infrastructure/db"
)

// openTestDB migrates the domain models into a private in-memory SQLite DB.
// One connection only: every ":memory:" connection is a separate database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := infradb.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

var t0 = time.Date(2025, 9, 15, 8, 0, 0, 0, time.UTC)

func makeLoan(number string) *loan.Loan {
	pv := decimal.NewFromInt(500000)
	income := decimal.NewFromInt(100000)
	l := &loan.Loan{
		LoanNumber:           number,
		LoanType:             loan.TypeConventional,
		LoanAmount:           decimal.NewFromInt(400000),
		InterestRate:         decimal.RequireFromString("6.5"),
		TermMonths:           360,
		Status:               loan.InitialStatus,
		ApplicationDate:      t0,
		PropertyValue:        &pv,
		BorrowerAnnualIncome: &income,
		Borrower:             loan.Borrower{FirstName: "Dana", LastName: "Reyes", Email: "dana@example.test"},
		Property:             loan.Property{Address: "12 Elm St", City: "Springfield", State: "IL", Zip: "62701"},
		CreatedBy:            "officer-1",
	}
	l.ApplyMetrics(loan.Calculate(l.MetricInputs()))
	return l
}
