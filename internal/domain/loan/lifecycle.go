package loan

import (
	"context"
	"errors"
	"time"

	"github.com/looplab/fsm"

	"salary-stream-loan/pkg/amortization"
	"salary-stream-loan/pkg/amount"
)

const (
	EventFund       = "fund"
	EventCloseEarly = "close_early"
	EventComplete   = "complete"
)

// lifecycleMachine is rebuilt from the persisted state for every operation; the
// loan row, not the FSM, is the source of truth.
func lifecycleMachine(current State) *fsm.FSM {
	return fsm.NewFSM(
		string(current),
		fsm.Events{
			{Name: EventFund, Src: []string{string(StatePending)}, Dst: string(StateActive)},
			{Name: EventCloseEarly, Src: []string{string(StateActive)}, Dst: string(StateClosedEarly)},
			{Name: EventComplete, Src: []string{string(StateActive)}, Dst: string(StateCompleted)},
		},
		fsm.Callbacks{},
	)
}

func (l *Loan) guard(event string) error {
	if lifecycleMachine(l.State).Can(event) {
		return nil
	}
	if event == EventFund {
		return ErrAlreadyFunded
	}
	return ErrWrongState
}

func (l *Loan) fire(ctx context.Context, event string, now time.Time) error {
	m := lifecycleMachine(l.State)
	if err := m.Event(ctx, event); err != nil {
		var invalid fsm.InvalidEventError
		if errors.As(err, &invalid) {
			return l.guard(event)
		}
		return err
	}
	l.State = State(m.Current())
	l.StateUpdatedAt = now.UTC()
	return nil
}

// Fund activates a pending loan and caches the required payment rate.
// Token movement is the caller's job and must happen in the same transaction.
func (l *Loan) Fund(ctx context.Context, lender string, now time.Time) error {
	if err := l.guard(EventFund); err != nil {
		return err
	}
	if lender == "" || lender == l.Borrower || lender == l.Address {
		return ErrInvalidParty
	}
	if err := l.fire(ctx, EventFund, now); err != nil {
		return err
	}
	start := now.UTC()
	l.Lender = &lender
	l.StartTime = &start
	l.PaymentFlowRate = amortization.RequiredPaymentRate(l.Principal, l.AnnualInterestRatePct, l.TermMonths)
	return nil
}

// CloseEarlyByBorrower records a borrower payoff. The payoff amount is not checked
// against AmountRemaining here.
func (l *Loan) CloseEarlyByBorrower(ctx context.Context, caller string, now time.Time) error {
	if err := l.guard(EventCloseEarly); err != nil {
		return err
	}
	if caller != l.Borrower {
		return ErrUnauthorized
	}
	return l.closeEarly(ctx, caller, now)
}

func (l *Loan) CloseEarlyByLender(ctx context.Context, caller string, now time.Time) error {
	if err := l.guard(EventCloseEarly); err != nil {
		return err
	}
	if caller == "" || caller != l.LenderID() {
		return ErrUnauthorized
	}
	return l.closeEarly(ctx, caller, now)
}

func (l *Loan) closeEarly(ctx context.Context, by string, now time.Time) error {
	if err := l.fire(ctx, EventCloseEarly, now); err != nil {
		return err
	}
	l.ClosedBy = &by
	return nil
}

// Complete closes an active loan whose term has fully elapsed. Borrower only.
func (l *Loan) Complete(ctx context.Context, caller string, now time.Time) error {
	if err := l.guard(EventComplete); err != nil {
		return err
	}
	if caller != l.Borrower {
		return ErrUnauthorized
	}
	if now.Before(l.TermEnd()) {
		return ErrTermNotElapsed
	}
	return l.fire(ctx, EventComplete, now)
}

// AmountRemaining is the lump sum that settles an active loan at now.
func (l *Loan) AmountRemaining(now time.Time) (amount.Amount, error) {
	if l.State != StateActive || l.StartTime == nil {
		return amount.Zero(), ErrWrongState
	}
	return amortization.Remaining(l.Principal, l.AnnualInterestRatePct, l.TermMonths, now.Sub(*l.StartTime)), nil
}
