package token

import (
	"context"

	"salary-stream-loan/pkg/amount"
)

// Repository reads missing rows as zero.
type Repository interface {
	Balance(ctx context.Context, token, account string) (amount.Amount, error)
	SetBalance(ctx context.Context, token, account string, a amount.Amount) error
	Allowance(ctx context.Context, token, owner, spender string) (amount.Amount, error)
	SetAllowance(ctx context.Context, token, owner, spender string, a amount.Amount) error
}
