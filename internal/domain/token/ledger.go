package token

import (
	"context"
	"fmt"

	"salary-stream-loan/pkg/amount"
)

// Transfer moves a from one account to another. Callers run it inside a
// transaction; on error nothing has been written.
func Transfer(ctx context.Context, r Repository, tok, from, to string, a amount.Amount) error {
	if from == to || a.IsZero() {
		return nil
	}
	bal, err := r.Balance(ctx, tok, from)
	if err != nil {
		return err
	}
	left, ok := bal.CheckedSub(a)
	if !ok {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientBalance, from, bal, a)
	}
	dst, err := r.Balance(ctx, tok, to)
	if err != nil {
		return err
	}
	if err := r.SetBalance(ctx, tok, from, left); err != nil {
		return err
	}
	return r.SetBalance(ctx, tok, to, dst.Add(a))
}

// TransferFrom moves a from owner to to on behalf of spender, consuming allowance.
func TransferFrom(ctx context.Context, r Repository, tok, spender, owner, to string, a amount.Amount) error {
	allowed, err := r.Allowance(ctx, tok, owner, spender)
	if err != nil {
		return err
	}
	rest, ok := allowed.CheckedSub(a)
	if !ok {
		return fmt.Errorf("%w: %s approved %s for %s, needs %s", ErrAllowanceInsufficient, owner, allowed, spender, a)
	}
	if err := Transfer(ctx, r, tok, owner, to, a); err != nil {
		return err
	}
	return r.SetAllowance(ctx, tok, owner, spender, rest)
}
