package loan

import (
	"time"

	"salary-stream-loan/pkg/amortization"
	"salary-stream-loan/pkg/amount"
)

type State string

const (
	StatePending     State = "pending"
	StateActive      State = "active"
	StateClosedEarly State = "closed_early"
	StateCompleted   State = "completed"
)

func (s State) Terminal() bool { return s == StateClosedEarly || s == StateCompleted }

// Terms are fixed at creation.
type Terms struct {
	Principal             amount.Amount
	AnnualInterestRatePct uint32
	TermMonths            uint32
	Employer              string
	Borrower              string
	SettlementToken       string
}

func (t Terms) Validate() error {
	if t.Principal.IsZero() || t.TermMonths == 0 || t.TermMonths > amortization.MaxTermMonths {
		return ErrInvalidTerms
	}
	return nil
}

// Loan is one registry entry. ID is the sequential registry id (1-based, assigned by
// the store); Address is the ledger account that flows target.
type Loan struct {
	ID                    uint64        `gorm:"primaryKey;column:id;autoIncrement" json:"loan_id"`
	Address               string        `gorm:"column:address;size:32;uniqueIndex:ux_loans_address" json:"address"`
	Principal             amount.Amount `gorm:"column:principal;type:varchar(80);not null" json:"principal"`
	AnnualInterestRatePct uint32        `gorm:"column:annual_interest_rate_pct;not null" json:"annual_interest_rate_pct"`
	TermMonths            uint32        `gorm:"column:term_months;not null" json:"term_months"`
	Employer              string        `gorm:"column:employer;size:32;not null" json:"employer"`
	Borrower              string        `gorm:"column:borrower;size:32;not null;index:idx_loans_borrower" json:"borrower"`
	SettlementToken       string        `gorm:"column:settlement_token;size:64;not null" json:"settlement_token"`

	Lender          *string       `gorm:"column:lender;size:32" json:"lender,omitempty"`
	StartTime       *time.Time    `gorm:"column:start_time" json:"start_time,omitempty"`
	State           State         `gorm:"column:state;size:16;not null;default:'pending';index:idx_loans_state" json:"state"`
	ClosedBy        *string       `gorm:"column:closed_by;size:32" json:"closed_by,omitempty"`
	PaymentFlowRate amount.Amount `gorm:"column:payment_flow_rate;type:varchar(80);not null" json:"payment_flow_rate"`

	StateUpdatedAt time.Time `gorm:"column:state_updated_at" json:"state_updated_at"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// New builds a pending loan. The store assigns ID on insert.
func New(address string, t Terms, now time.Time) (*Loan, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Loan{
		Address:               address,
		Principal:             t.Principal,
		AnnualInterestRatePct: t.AnnualInterestRatePct,
		TermMonths:            t.TermMonths,
		Employer:              t.Employer,
		Borrower:              t.Borrower,
		SettlementToken:       t.SettlementToken,
		State:                 StatePending,
		StateUpdatedAt:        now.UTC(),
	}, nil
}

func (l *Loan) Terms() Terms {
	return Terms{
		Principal:             l.Principal,
		AnnualInterestRatePct: l.AnnualInterestRatePct,
		TermMonths:            l.TermMonths,
		Employer:              l.Employer,
		Borrower:              l.Borrower,
		SettlementToken:       l.SettlementToken,
	}
}

// Lifecycle is the tagged view of State + ClosedBy. By is set only for closed_early.
type Lifecycle struct {
	State State
	By    string
}

func (l *Loan) Lifecycle() Lifecycle {
	lc := Lifecycle{State: l.State}
	if l.State == StateClosedEarly && l.ClosedBy != nil {
		lc.By = *l.ClosedBy
	}
	return lc
}

func (l *Loan) LenderID() string {
	if l.Lender == nil {
		return ""
	}
	return *l.Lender
}

func (l *Loan) TotalRepayment() amount.Amount {
	return amortization.TotalRepayment(l.Principal, l.AnnualInterestRatePct, l.TermMonths)
}

// TermEnd is zero until funded.
func (l *Loan) TermEnd() time.Time {
	if l.StartTime == nil {
		return time.Time{}
	}
	return l.StartTime.Add(amortization.TermDuration(l.TermMonths))
}
