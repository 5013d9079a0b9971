package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salary-stream-loan/internal/domain/loan"
	"salary-stream-loan/internal/domain/stream"
	"salary-stream-loan/internal/domain/token"
	"salary-stream-loan/internal/domain/uow"
	"salary-stream-loan/pkg/amount"
	"salary-stream-loan/pkg/id"

	"go.uber.org/zap"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type Usecase struct {
	loans   loan.Repository
	flows   stream.Repository
	uow     uow.UnitOfWork
	log     *zap.Logger
	metrics Metrics
	now     func() time.Time
}

func NewUsecase(loans loan.Repository, flows stream.Repository, tx uow.UnitOfWork, opts ...Option) *Usecase {
	u := &Usecase{
		loans:   loans,
		flows:   flows,
		uow:     tx,
		log:     zap.NewNop(),
		metrics: nopMetrics{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// CreateLoan registers a pending loan and returns it with its sequential id.
func (u *Usecase) CreateLoan(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	l, err := loan.New(id.NewAccount(), loan.Terms{
		Principal:             in.Principal,
		AnnualInterestRatePct: in.AnnualInterestRatePct,
		TermMonths:            in.TermMonths,
		Employer:              in.Employer,
		Borrower:              in.Borrower,
		SettlementToken:       in.SettlementToken,
	}, u.now())
	if err != nil {
		return nil, err
	}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := u.rejectLoanAccount(ctx, r, l.Borrower); err != nil {
			return err
		}
		return r.Loans.Create(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("loan created",
		zap.Uint64("loan_id", l.ID),
		zap.String("address", l.Address),
		zap.String("borrower", l.Borrower),
		zap.Stringer("principal", l.Principal))
	return toDTO(l), nil
}

// GetLoan resolves a registry id and includes the loan's current flow rates.
func (u *Usecase) GetLoan(ctx context.Context, loanID uint64) (*LoanDTO, error) {
	l, err := u.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(l)
	rates, err := u.rates(ctx, l)
	if err != nil {
		return nil, err
	}
	dto.Flows = rates
	return dto, nil
}

func (u *Usecase) ListLoans(ctx context.Context, afterID uint64, limit int) ([]LoanDTO, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	ls, err := u.loans.List(ctx, afterID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(ls))
	for i := range ls {
		out = append(out, *toDTO(&ls[i]))
	}
	return out, nil
}

func (u *Usecase) AmountRemaining(ctx context.Context, loanID uint64) (*RemainingDTO, error) {
	l, err := u.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	now := u.now()
	rem, err := l.AmountRemaining(now)
	if err != nil {
		return nil, err
	}
	return &RemainingDTO{LoanID: l.ID, AmountRemaining: rem, At: now}, nil
}

// Fund disburses the principal from the lender's allowance to the borrower and
// starts splitting whatever inbound rate the loan currently receives.
func (u *Usecase) Fund(ctx context.Context, loanID uint64, lender string) (*LoanDTO, error) {
	return u.transition(ctx, loanID, func(r uow.Repos, l *loan.Loan, now time.Time) error {
		if err := l.Fund(ctx, lender, now); err != nil {
			return err
		}
		if err := u.rejectLoanAccount(ctx, r, lender); err != nil {
			return err
		}
		err := token.TransferFrom(ctx, r.Tokens, l.SettlementToken, l.Address, lender, l.Borrower, l.Principal)
		return ledgerErr(err)
	})
}

// CloseEarlyByBorrowerPayoff forwards payoff from the borrower to the lender and
// closes the loan. A payoff below the amount remaining is accepted and logged.
func (u *Usecase) CloseEarlyByBorrowerPayoff(ctx context.Context, loanID uint64, caller string, payoff amount.Amount) (*LoanDTO, error) {
	return u.transition(ctx, loanID, func(r uow.Repos, l *loan.Loan, now time.Time) error {
		remaining, err := l.AmountRemaining(now)
		if err != nil {
			return err
		}
		if err := l.CloseEarlyByBorrower(ctx, caller, now); err != nil {
			return err
		}
		if payoff.LessThan(remaining) {
			u.log.Warn("loan closed with payoff below amount remaining",
				zap.Uint64("loan_id", l.ID),
				zap.Stringer("payoff", payoff),
				zap.Stringer("amount_remaining", remaining))
		}
		err = token.TransferFrom(ctx, r.Tokens, l.SettlementToken, l.Address, l.Borrower, l.LenderID(), payoff)
		return ledgerErr(err)
	})
}

func (u *Usecase) CloseEarlyByLender(ctx context.Context, loanID uint64, caller string) (*LoanDTO, error) {
	return u.transition(ctx, loanID, func(_ uow.Repos, l *loan.Loan, now time.Time) error {
		return l.CloseEarlyByLender(ctx, caller, now)
	})
}

func (u *Usecase) CloseCompleted(ctx context.Context, loanID uint64, caller string) (*LoanDTO, error) {
	return u.transition(ctx, loanID, func(_ uow.Repos, l *loan.Loan, now time.Time) error {
		return l.Complete(ctx, caller, now)
	})
}

// transition locks the loan, applies fn, persists it and recomputes both
// outbound flows from the current inbound rate, all in one transaction.
func (u *Usecase) transition(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan, now time.Time) error) (*LoanDTO, error) {
	var (
		dto      *LoanDTO
		from, to loan.State
	)
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		from = l.State
		if err := fn(r, l, u.now()); err != nil {
			return err
		}
		to = l.State
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		inbound, err := r.Flows.InboundTotal(ctx, l.SettlementToken, l.Address)
		if err != nil {
			return err
		}
		split, err := u.reallocate(ctx, r, l, inbound)
		if err != nil {
			return err
		}
		dto = toDTO(l)
		dto.Flows = &FlowRates{Inbound: inbound, ToLender: split.ToLender, ToBorrower: split.ToBorrower}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.metrics.Transitioned(from, to)
	if to.Terminal() {
		u.log.Info("loan closed",
			zap.Uint64("loan_id", loanID),
			zap.String("state", string(to)),
			zap.String("closed_by", dto.ClosedBy))
		return dto, nil
	}
	u.log.Info("loan state changed",
		zap.Uint64("loan_id", loanID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return dto, nil
}

// Reactive reports whether account is a loan.
func (u *Usecase) Reactive(ctx context.Context, r uow.Repos, account string) (bool, error) {
	_, err := r.Loans.GetByAddressForUpdate(ctx, account)
	switch {
	case errors.Is(err, loan.ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// rejectLoanAccount keeps loans from paying other loans. Their outbound flows
// are written without notifying the receiver, so a loan receiving from another
// loan would never rebalance.
func (u *Usecase) rejectLoanAccount(ctx context.Context, r uow.Repos, party string) error {
	reactive, err := u.Reactive(ctx, r, party)
	if err != nil {
		return err
	}
	if reactive {
		return fmt.Errorf("%w: %s is a loan account", loan.ErrInvalidParty, party)
	}
	return nil
}

// OnInboundFlowChanged is called by the stream host inside the flow mutation's
// transaction. Any non-negative rate is accepted; the only rejection is a flow
// in a token the loan does not settle in.
func (u *Usecase) OnInboundFlowChanged(ctx context.Context, r uow.Repos, receiver, tok string, inbound amount.Amount) error {
	l, err := r.Loans.GetByAddressForUpdate(ctx, receiver)
	switch {
	case errors.Is(err, loan.ErrNotFound):
		return nil
	case err != nil:
		return err
	}
	if tok != l.SettlementToken {
		return fmt.Errorf("%w: loan %d settles in %s, got %s", loan.ErrUnsupportedStream, l.ID, l.SettlementToken, tok)
	}
	_, err = u.reallocate(ctx, r, l, inbound)
	return err
}

func (u *Usecase) reallocate(ctx context.Context, r uow.Repos, l *loan.Loan, inbound amount.Amount) (loan.Split, error) {
	s := l.Reallocate(inbound)
	if lender := l.LenderID(); lender != "" {
		if err := setOutbound(ctx, r, l, lender, s.ToLender); err != nil {
			return s, err
		}
	}
	if err := setOutbound(ctx, r, l, l.Borrower, s.ToBorrower); err != nil {
		return s, err
	}
	u.metrics.Reallocated(s.Outcome)
	if s.Outcome == loan.OutcomeInsolvent {
		u.log.Warn("inbound rate below required payment rate",
			zap.Uint64("loan_id", l.ID),
			zap.Stringer("inbound", inbound),
			zap.Stringer("required", l.PaymentFlowRate))
	}
	return s, nil
}

// setOutbound writes the loan's flow to receiver directly, bypassing the stream
// host's sender check. A zero rate removes the flow.
func setOutbound(ctx context.Context, r uow.Repos, l *loan.Loan, receiver string, rate amount.Amount) error {
	k := stream.Key{Token: l.SettlementToken, Sender: l.Address, Receiver: receiver}
	if rate.IsZero() {
		if err := r.Flows.Delete(ctx, k); err != nil && !errors.Is(err, stream.ErrFlowNotFound) {
			return err
		}
		return nil
	}
	return r.Flows.Upsert(ctx, &stream.Flow{Token: k.Token, Sender: k.Sender, Receiver: k.Receiver, Rate: rate})
}

func (u *Usecase) rates(ctx context.Context, l *loan.Loan) (*FlowRates, error) {
	in, err := u.flows.InboundTotal(ctx, l.SettlementToken, l.Address)
	if err != nil {
		return nil, err
	}
	out := &FlowRates{Inbound: in}
	if out.ToBorrower, err = u.outbound(ctx, l, l.Borrower); err != nil {
		return nil, err
	}
	if lender := l.LenderID(); lender != "" {
		if out.ToLender, err = u.outbound(ctx, l, lender); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (u *Usecase) outbound(ctx context.Context, l *loan.Loan, receiver string) (amount.Amount, error) {
	f, err := u.flows.Get(ctx, stream.Key{Token: l.SettlementToken, Sender: l.Address, Receiver: receiver})
	if errors.Is(err, stream.ErrFlowNotFound) {
		return amount.Zero(), nil
	}
	if err != nil {
		return amount.Zero(), err
	}
	return f.Rate, nil
}

// Outstanding sums AmountRemaining over every active loan. Read only.
func (u *Usecase) Outstanding(ctx context.Context) (*Outstanding, error) {
	active, err := u.loans.ListByState(ctx, loan.StateActive)
	if err != nil {
		return nil, err
	}
	now := u.now()
	owed := make([]amount.Amount, 0, len(active))
	for i := range active {
		rem, err := active[i].AmountRemaining(now)
		if err != nil {
			continue
		}
		owed = append(owed, rem)
	}
	return &Outstanding{ActiveLoans: len(active), Total: amount.Sum(owed...), At: now}, nil
}

// ledgerErr maps token ledger failures onto the loan's error taxonomy.
func ledgerErr(err error) error {
	if errors.Is(err, token.ErrAllowanceInsufficient) {
		return fmt.Errorf("%w: %v", loan.ErrAllowanceInsufficient, err)
	}
	return err
}
