package loanmock

import (
	"context"

	domain "salary-stream-loan/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled; unset writes are no-ops.
type Repo struct {
	CreateFn                func(ctx context.Context, l *domain.Loan) error
	GetByIDFn               func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByIDForUpdateFn      func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByAddressForUpdateFn func(ctx context.Context, address string) (*domain.Loan, error)
	ListFn                  func(ctx context.Context, afterID uint64, limit int) ([]domain.Loan, error)
	ListByStateFn           func(ctx context.Context, state domain.State) ([]domain.Loan, error)
	SaveFn                  func(ctx context.Context, l *domain.Loan) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByAddressForUpdate(ctx context.Context, address string) (*domain.Loan, error) {
	if m.GetByAddressForUpdateFn != nil {
		return m.GetByAddressForUpdateFn(ctx, address)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, afterID uint64, limit int) ([]domain.Loan, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, afterID, limit)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByState(ctx context.Context, state domain.State) ([]domain.Loan, error) {
	if m.ListByStateFn != nil {
		return m.ListByStateFn(ctx, state)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}
