package id

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"

	"mortgage-backend/pkg/clock"
)

const (
	loanNumberPrefix     = "LN"
	loanNumberDateLayout = "060102"
	// sequences 1..9999 are drawn at random; the fallback probe also covers 0000
	sequenceSpace     = 10000
	maxRandomAttempts = 100
)

var reLoanNumber = regexp.MustCompile(`^LN[0-9]{6}[0-9]{4}$`)

// ErrLoanNumbersExhausted is returned when every sequence of the day is taken.
var ErrLoanNumbersExhausted = errors.New("loan numbers exhausted for date")

// ExistsFunc reports whether a loan number is already in use.
type ExistsFunc func(ctx context.Context, loanNumber string) (bool, error)

// LoanNumberGenerator produces LN{yyMMdd}{seq4} numbers, e.g. LN2509150042.
type LoanNumberGenerator struct {
	clock clock.Clock
	intn  func(n int) int
}

func NewLoanNumberGenerator(c clock.Clock) *LoanNumberGenerator {
	return &LoanNumberGenerator{clock: c, intn: rand.IntN}
}

// WithRand swaps the random source; intn must return a value in [0, n).
func (g *LoanNumberGenerator) WithRand(intn func(n int) int) *LoanNumberGenerator {
	g.intn = intn
	return g
}

// Next tries random sequences first, then probes linearly from a
// timestamp-derived start so a number is only handed out when exists says
// it is free.
func (g *LoanNumberGenerator) Next(ctx context.Context, exists ExistsFunc) (string, error) {
	now := g.clock.Now()
	date := now.Format(loanNumberDateLayout)

	for i := 0; i < maxRandomAttempts; i++ {
		n := formatLoanNumber(date, g.intn(sequenceSpace-1)+1)
		taken, err := exists(ctx, n)
		if err != nil {
			return "", err
		}
		if !taken {
			return n, nil
		}
	}

	start := int(now.UnixMilli() % sequenceSpace)
	for i := 0; i < sequenceSpace; i++ {
		n := formatLoanNumber(date, (start+i)%sequenceSpace)
		taken, err := exists(ctx, n)
		if err != nil {
			return "", err
		}
		if !taken {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLoanNumbersExhausted, date)
}

// ValidLoanNumber checks the external 12-character format.
func ValidLoanNumber(s string) bool { return reLoanNumber.MatchString(s) }

func formatLoanNumber(date string, seq int) string {
	return fmt.Sprintf("%s%s%04d", loanNumberPrefix, date, seq)
}
