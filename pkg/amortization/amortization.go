// Package amortization spreads principal plus simple annual interest evenly over a
// loan term as a constant per-second repayment rate. All divisions round down.
package amortization

import (
	"time"

	"salary-stream-loan/pkg/amount"
)

// SecondsPerMonth is a fixed 30-day month.
const SecondsPerMonth uint64 = 30 * 24 * 60 * 60

// MaxTermMonths bounds loan terms. TermDuration overflows time.Duration past
// 3558 months.
const MaxTermMonths uint32 = 600

// TermSeconds is the length of a term of termMonths months.
func TermSeconds(termMonths uint32) uint64 { return uint64(termMonths) * SecondsPerMonth }

// TermDuration is TermSeconds as a time.Duration.
func TermDuration(termMonths uint32) time.Duration {
	return time.Duration(TermSeconds(termMonths)) * time.Second
}

// TotalRepayment = principal + principal*rate/100*termMonths/12, with the interest
// term computed as a single floored division.
func TotalRepayment(principal amount.Amount, annualRatePct, termMonths uint32) amount.Amount {
	interest := principal.MulUint64(uint64(annualRatePct) * uint64(termMonths)).DivUint64(1200)
	return principal.Add(interest)
}

// RequiredPaymentRate is the per-second rate that repays TotalRepayment over the term.
// Zero when termMonths is zero.
func RequiredPaymentRate(principal amount.Amount, annualRatePct, termMonths uint32) amount.Amount {
	return TotalRepayment(principal, annualRatePct, termMonths).DivUint64(TermSeconds(termMonths))
}

// Remaining is what is still owed after elapsed time at the required rate.
// It is zero from the end of the term onwards and never negative.
func Remaining(principal amount.Amount, annualRatePct, termMonths uint32, elapsed time.Duration) amount.Amount {
	term := TermSeconds(termMonths)
	if elapsed < 0 {
		elapsed = 0
	}
	secs := uint64(elapsed / time.Second)
	if secs >= term {
		return amount.Zero()
	}
	total := TotalRepayment(principal, annualRatePct, termMonths)
	paid := RequiredPaymentRate(principal, annualRatePct, termMonths).MulUint64(secs)
	return total.Sub(paid)
}
