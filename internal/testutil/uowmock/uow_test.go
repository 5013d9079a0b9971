package uowmock

import (
	"context"
	"errors"
	"testing"

	"salary-stream-loan/internal/domain/loan"
	"salary-stream-loan/internal/domain/uow"
	"salary-stream-loan/internal/testutil/loanmock"
)

func TestUoW_Unset(t *testing.T) {
	m := &UoW{}
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx: want errUnimplemented, got %v", err)
	}
	if err := m.WithinLoanTx(context.Background(), 1, func(uow.Repos, *loan.Loan) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinLoanTx: want errUnimplemented, got %v", err)
	}
}

func TestPassthrough(t *testing.T) {
	want := &loan.Loan{ID: 3}
	loans := &loanmock.Repo{
		GetByIDForUpdateFn: func(_ context.Context, id uint64) (*loan.Loan, error) {
			if id != 3 {
				return nil, loan.ErrNotFound
			}
			return want, nil
		},
	}
	m := Passthrough(uow.Repos{Loans: loans})

	var got *loan.Loan
	if err := m.WithinLoanTx(context.Background(), 3, func(r uow.Repos, l *loan.Loan) error {
		if r.Loans != loans {
			t.Fatalf("repos not passed through")
		}
		got = l
		return nil
	}); err != nil {
		t.Fatalf("WithinLoanTx: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v", got)
	}

	err := m.WithinLoanTx(context.Background(), 4, func(uow.Repos, *loan.Loan) error {
		t.Fatalf("callback must not run for missing loan")
		return nil
	})
	if !errors.Is(err, loan.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	sentinel := errors.New("boom")
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinTx: want sentinel, got %v", err)
	}
}
