package loan

import "salary-stream-loan/pkg/amount"

type Outcome string

const (
	OutcomePassthrough Outcome = "passthrough"
	OutcomeSolvent     Outcome = "solvent"
	OutcomeInsolvent   Outcome = "insolvent"
)

// Split is the pair of outbound rates derived from one inbound rate.
// ToLender + ToBorrower always equals the inbound rate.
type Split struct {
	ToLender   amount.Amount
	ToBorrower amount.Amount
	Outcome    Outcome
}

// Reallocate derives both outbound rates from the inbound rate alone. It never
// fails: outside Active everything passes through to the borrower, inside Active
// the lender gets min(inbound, required) and the borrower the rest.
func (l *Loan) Reallocate(inbound amount.Amount) Split {
	if l.State != StateActive {
		return Split{ToBorrower: inbound, Outcome: OutcomePassthrough}
	}
	toLender := amount.Min(inbound, l.PaymentFlowRate)
	out := Split{ToLender: toLender, ToBorrower: inbound.Sub(toLender), Outcome: OutcomeSolvent}
	if inbound.LessThan(l.PaymentFlowRate) {
		out.Outcome = OutcomeInsolvent
	}
	return out
}
