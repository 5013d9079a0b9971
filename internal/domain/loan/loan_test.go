package loan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salary-stream-loan/pkg/amortization"
	"salary-stream-loan/pkg/amount"
)

const (
	employer = "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"
	borrower = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	lender   = "11111111111111111111111111111111"
	outsider = "99999999999999999999999999999999"
)

var (
	start        = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	employerRate = amount.MustParse("3215019290123456")
	requiredRate = amount.MustParse("35365226337448")
)

func fixtureTerms() Terms {
	return Terms{
		Principal:             amount.MustParse("1000000000000000000000"),
		AnnualInterestRatePct: 10,
		TermMonths:            12,
		Employer:              employer,
		Borrower:              borrower,
		SettlementToken:       "fdaix",
	}
}

func newPending(t *testing.T) *Loan {
	t.Helper()
	l, err := New("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", fixtureTerms(), start)
	require.NoError(t, err)
	return l
}

func newActive(t *testing.T) *Loan {
	t.Helper()
	l := newPending(t)
	require.NoError(t, l.Fund(context.Background(), lender, start))
	return l
}

func assertConserved(t *testing.T, inbound amount.Amount, s Split) {
	t.Helper()
	assert.Equal(t, inbound.String(), s.ToLender.Add(s.ToBorrower).String(), "outbound must sum to inbound")
}

func TestNew_RejectsInvalidTerms(t *testing.T) {
	bad := fixtureTerms()
	bad.Principal = amount.Zero()
	_, err := New("a", bad, start)
	assert.ErrorIs(t, err, ErrInvalidTerms)

	bad = fixtureTerms()
	bad.TermMonths = 0
	_, err = New("a", bad, start)
	assert.ErrorIs(t, err, ErrInvalidTerms)

	for _, months := range []uint32{amortization.MaxTermMonths + 1, 4000, ^uint32(0)} {
		bad = fixtureTerms()
		bad.TermMonths = months
		_, err = New("a", bad, start)
		assert.ErrorIs(t, err, ErrInvalidTerms, "term of %d months", months)
	}
}

func TestComplete_LongestTermStillGuarded(t *testing.T) {
	terms := fixtureTerms()
	terms.TermMonths = amortization.MaxTermMonths
	l, err := New("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", terms, start)
	require.NoError(t, err)
	require.NoError(t, l.Fund(context.Background(), lender, start))

	require.True(t, l.TermEnd().After(start), "term end %v must follow funding", l.TermEnd())
	err = l.Complete(context.Background(), borrower, start.Add(time.Hour))
	assert.ErrorIs(t, err, ErrTermNotElapsed)
	assert.NoError(t, l.Complete(context.Background(), borrower, l.TermEnd()))
}

func TestNew_StartsPending(t *testing.T) {
	l := newPending(t)
	assert.Equal(t, StatePending, l.State)
	assert.Equal(t, Lifecycle{State: StatePending}, l.Lifecycle())
	assert.Nil(t, l.Lender)
	assert.Nil(t, l.StartTime)
	assert.True(t, l.PaymentFlowRate.IsZero())
	assert.Equal(t, fixtureTerms(), l.Terms())
}

func TestReallocate_PassthroughOutsideActive(t *testing.T) {
	rates := []amount.Amount{amount.Zero(), amount.FromUint64(1_000_000), employerRate}

	pending := newPending(t)
	closed := newActive(t)
	require.NoError(t, closed.CloseEarlyByLender(context.Background(), lender, start.Add(time.Hour)))
	completed := newActive(t)
	require.NoError(t, completed.Complete(context.Background(), borrower, completed.TermEnd()))

	for _, l := range []*Loan{pending, closed, completed} {
		for _, r := range rates {
			s := l.Reallocate(r)
			assert.True(t, s.ToLender.IsZero(), "state %s rate %s", l.State, r)
			assert.Equal(t, r.String(), s.ToBorrower.String())
			assert.Equal(t, OutcomePassthrough, s.Outcome)
			assertConserved(t, r, s)
		}
	}
}

func TestReallocate_Active(t *testing.T) {
	l := newActive(t)
	require.Equal(t, requiredRate.String(), l.PaymentFlowRate.String())

	tests := []struct {
		name       string
		inbound    amount.Amount
		toLender   string
		toBorrower string
		outcome    Outcome
	}{
		{"solvent", employerRate, "35365226337448", "3179654063786008", OutcomeSolvent},
		{"exactly required", requiredRate, "35365226337448", "0", OutcomeSolvent},
		{"insolvent", amount.FromUint64(10_000), "10000", "0", OutcomeInsolvent},
		{"stopped", amount.Zero(), "0", "0", OutcomeInsolvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := l.Reallocate(tt.inbound)
			assert.Equal(t, tt.toLender, s.ToLender.String())
			assert.Equal(t, tt.toBorrower, s.ToBorrower.String())
			assert.Equal(t, tt.outcome, s.Outcome)
			assertConserved(t, tt.inbound, s)
		})
	}
}

func TestReallocate_RecomputesFromScratch(t *testing.T) {
	l := newActive(t)
	first := l.Reallocate(employerRate)
	_ = l.Reallocate(amount.FromUint64(10_000))
	_ = l.Reallocate(amount.Zero())
	again := l.Reallocate(employerRate)
	assert.Equal(t, first.ToLender.String(), again.ToLender.String())
	assert.Equal(t, first.ToBorrower.String(), again.ToBorrower.String())
}

func TestFund(t *testing.T) {
	ctx := context.Background()

	l := newPending(t)
	assert.ErrorIs(t, l.Fund(ctx, borrower, start), ErrInvalidParty)
	assert.ErrorIs(t, l.Fund(ctx, "", start), ErrInvalidParty)
	assert.Equal(t, StatePending, l.State, "failed fund must not change state")

	require.NoError(t, l.Fund(ctx, lender, start))
	assert.Equal(t, StateActive, l.State)
	assert.Equal(t, lender, l.LenderID())
	require.NotNil(t, l.StartTime)
	assert.True(t, l.StartTime.Equal(start))
	assert.Equal(t, start.Add(amortization.TermDuration(12)), l.TermEnd())

	assert.ErrorIs(t, l.Fund(ctx, outsider, start), ErrAlreadyFunded)
	assert.Equal(t, lender, l.LenderID())
}

func TestCloseEarlyByBorrower(t *testing.T) {
	ctx := context.Background()

	assert.ErrorIs(t, newPending(t).CloseEarlyByBorrower(ctx, borrower, start), ErrWrongState)

	l := newActive(t)
	assert.ErrorIs(t, l.CloseEarlyByBorrower(ctx, lender, start), ErrUnauthorized)
	require.NoError(t, l.CloseEarlyByBorrower(ctx, borrower, start.Add(time.Hour)))
	assert.Equal(t, Lifecycle{State: StateClosedEarly, By: borrower}, l.Lifecycle())
	assert.True(t, l.StateUpdatedAt.Equal(start.Add(time.Hour)))
}

func TestCloseEarlyByLender(t *testing.T) {
	ctx := context.Background()

	assert.ErrorIs(t, newPending(t).CloseEarlyByLender(ctx, lender, start), ErrWrongState)

	l := newActive(t)
	assert.ErrorIs(t, l.CloseEarlyByLender(ctx, borrower, start), ErrUnauthorized)
	require.NoError(t, l.CloseEarlyByLender(ctx, lender, start.Add(180*24*time.Hour)))
	assert.Equal(t, Lifecycle{State: StateClosedEarly, By: lender}, l.Lifecycle())
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	l := newActive(t)

	assert.ErrorIs(t, l.Complete(ctx, lender, l.TermEnd()), ErrUnauthorized)
	assert.ErrorIs(t, l.Complete(ctx, borrower, l.TermEnd().Add(-time.Second)), ErrTermNotElapsed)
	require.NoError(t, l.Complete(ctx, borrower, l.TermEnd().Add(time.Hour)))
	assert.Equal(t, Lifecycle{State: StateCompleted}, l.Lifecycle())
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	ctx := context.Background()

	closed := newActive(t)
	require.NoError(t, closed.CloseEarlyByBorrower(ctx, borrower, start))
	completed := newActive(t)
	require.NoError(t, completed.Complete(ctx, borrower, completed.TermEnd()))

	for _, l := range []*Loan{closed, completed} {
		before := l.Lifecycle()
		assert.ErrorIs(t, l.Fund(ctx, outsider, start), ErrAlreadyFunded)
		assert.ErrorIs(t, l.CloseEarlyByBorrower(ctx, borrower, start), ErrWrongState)
		assert.ErrorIs(t, l.CloseEarlyByLender(ctx, lender, start), ErrWrongState)
		assert.ErrorIs(t, l.Complete(ctx, borrower, l.TermEnd().Add(time.Hour)), ErrWrongState)
		assert.Equal(t, before, l.Lifecycle())
		assert.True(t, l.State.Terminal())
	}
}

func TestAmountRemaining(t *testing.T) {
	_, err := newPending(t).AmountRemaining(start)
	assert.ErrorIs(t, err, ErrWrongState)

	l := newActive(t)
	got, err := l.AmountRemaining(start)
	require.NoError(t, err)
	assert.Equal(t, "1100000000000000000000", got.String())

	got, err = l.AmountRemaining(start.Add(amortization.TermDuration(12) / 2))
	require.NoError(t, err)
	assert.Equal(t, "550000000000008704000", got.String())

	got, err = l.AmountRemaining(l.TermEnd())
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}
