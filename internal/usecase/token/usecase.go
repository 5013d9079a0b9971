package token

import (
	"context"

	domain "salary-stream-loan/internal/domain/token"
	"salary-stream-loan/internal/domain/uow"
	"salary-stream-loan/pkg/amount"
)

// Usecase is the ledger for the streamable form of each token. Base asset
// custody on upgrade/downgrade happens outside this service.
type Usecase struct {
	tokens domain.Repository
	uow    uow.UnitOfWork
}

func NewUsecase(tokens domain.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{tokens: tokens, uow: tx}
}

type BalanceDTO struct {
	Token   string        `json:"token"`
	Account string        `json:"account"`
	Balance amount.Amount `json:"balance"`
}

type AllowanceDTO struct {
	Token     string        `json:"token"`
	Owner     string        `json:"owner"`
	Spender   string        `json:"spender"`
	Allowance amount.Amount `json:"allowance"`
}

// Approve replaces, not adds to, the spender's allowance.
func (u *Usecase) Approve(ctx context.Context, tok, owner, spender string, a amount.Amount) (*AllowanceDTO, error) {
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Tokens.SetAllowance(ctx, tok, owner, spender, a)
	})
	if err != nil {
		return nil, err
	}
	return &AllowanceDTO{Token: tok, Owner: owner, Spender: spender, Allowance: a}, nil
}

func (u *Usecase) Allowance(ctx context.Context, tok, owner, spender string) (*AllowanceDTO, error) {
	a, err := u.tokens.Allowance(ctx, tok, owner, spender)
	if err != nil {
		return nil, err
	}
	return &AllowanceDTO{Token: tok, Owner: owner, Spender: spender, Allowance: a}, nil
}

func (u *Usecase) BalanceOf(ctx context.Context, tok, account string) (*BalanceDTO, error) {
	b, err := u.tokens.Balance(ctx, tok, account)
	if err != nil {
		return nil, err
	}
	return &BalanceDTO{Token: tok, Account: account, Balance: b}, nil
}

func (u *Usecase) Transfer(ctx context.Context, tok, from, to string, a amount.Amount) (*BalanceDTO, error) {
	if a.IsZero() {
		return nil, domain.ErrInvalidAmount
	}
	return u.settle(ctx, tok, from, func(r uow.Repos) error {
		return domain.Transfer(ctx, r.Tokens, tok, from, to, a)
	})
}

func (u *Usecase) TransferFrom(ctx context.Context, tok, spender, owner, to string, a amount.Amount) (*BalanceDTO, error) {
	if a.IsZero() {
		return nil, domain.ErrInvalidAmount
	}
	return u.settle(ctx, tok, owner, func(r uow.Repos) error {
		return domain.TransferFrom(ctx, r.Tokens, tok, spender, owner, to, a)
	})
}

// Upgrade credits the streamable form after the base asset has been taken in.
func (u *Usecase) Upgrade(ctx context.Context, tok, account string, a amount.Amount) (*BalanceDTO, error) {
	if a.IsZero() {
		return nil, domain.ErrInvalidAmount
	}
	return u.settle(ctx, tok, account, func(r uow.Repos) error {
		bal, err := r.Tokens.Balance(ctx, tok, account)
		if err != nil {
			return err
		}
		return r.Tokens.SetBalance(ctx, tok, account, bal.Add(a))
	})
}

func (u *Usecase) Downgrade(ctx context.Context, tok, account string, a amount.Amount) (*BalanceDTO, error) {
	if a.IsZero() {
		return nil, domain.ErrInvalidAmount
	}
	return u.settle(ctx, tok, account, func(r uow.Repos) error {
		bal, err := r.Tokens.Balance(ctx, tok, account)
		if err != nil {
			return err
		}
		left, ok := bal.CheckedSub(a)
		if !ok {
			return domain.ErrInsufficientBalance
		}
		return r.Tokens.SetBalance(ctx, tok, account, left)
	})
}

// settle runs fn and reports account's balance as seen by the same transaction.
func (u *Usecase) settle(ctx context.Context, tok, account string, fn func(r uow.Repos) error) (*BalanceDTO, error) {
	var out *BalanceDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := fn(r); err != nil {
			return err
		}
		b, err := r.Tokens.Balance(ctx, tok, account)
		if err != nil {
			return err
		}
		out = &BalanceDTO{Token: tok, Account: account, Balance: b}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
