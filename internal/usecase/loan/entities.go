package loan

import (
	"time"

	"salary-stream-loan/internal/domain/loan"
	"salary-stream-loan/pkg/amount"
)

type CreateLoanInput struct {
	Principal             amount.Amount
	AnnualInterestRatePct uint32
	TermMonths            uint32
	Employer              string
	Borrower              string
	SettlementToken       string
}

type FlowRates struct {
	Inbound    amount.Amount `json:"inbound"`
	ToLender   amount.Amount `json:"to_lender"`
	ToBorrower amount.Amount `json:"to_borrower"`
}

type LoanDTO struct {
	LoanID                uint64        `json:"loan_id"`
	Address               string        `json:"address"`
	Principal             amount.Amount `json:"principal"`
	AnnualInterestRatePct uint32        `json:"annual_interest_rate_pct"`
	TermMonths            uint32        `json:"term_months"`
	Employer              string        `json:"employer"`
	Borrower              string        `json:"borrower"`
	SettlementToken       string        `json:"settlement_token"`
	Lender                string        `json:"lender,omitempty"`
	StartTime             *time.Time    `json:"start_time,omitempty"`
	State                 string        `json:"state"`
	ClosedBy              string        `json:"closed_by,omitempty"`
	PaymentFlowRate       amount.Amount `json:"payment_flow_rate"`
	TotalRepayment        amount.Amount `json:"total_repayment"`
	Flows                 *FlowRates    `json:"flows,omitempty"`
	CreatedAt             time.Time     `json:"created_at"`
}

type RemainingDTO struct {
	LoanID          uint64        `json:"loan_id"`
	AmountRemaining amount.Amount `json:"amount_remaining"`
	At              time.Time     `json:"at"`
}

// Outstanding aggregates the payoff amounts of every active loan at one instant.
type Outstanding struct {
	ActiveLoans int
	Total       amount.Amount
	At          time.Time
}

func toDTO(l *loan.Loan) *LoanDTO {
	lc := l.Lifecycle()
	return &LoanDTO{
		LoanID:                l.ID,
		Address:               l.Address,
		Principal:             l.Principal,
		AnnualInterestRatePct: l.AnnualInterestRatePct,
		TermMonths:            l.TermMonths,
		Employer:              l.Employer,
		Borrower:              l.Borrower,
		SettlementToken:       l.SettlementToken,
		Lender:                l.LenderID(),
		StartTime:             l.StartTime,
		State:                 string(lc.State),
		ClosedBy:              lc.By,
		PaymentFlowRate:       l.PaymentFlowRate,
		TotalRepayment:        l.TotalRepayment(),
		CreatedAt:             l.CreatedAt,
	}
}
