package uow

import (
	"context"

	"salary-stream-loan/internal/domain/loan"
	"salary-stream-loan/internal/domain/stream"
	"salary-stream-loan/internal/domain/token"
)

// Repos are bound to one transaction.
type Repos struct {
	Loans  loan.Repository
	Flows  stream.Repository
	Tokens token.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.Loan) error) error
}
