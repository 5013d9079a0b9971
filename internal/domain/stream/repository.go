package stream

import (
	"context"

	"salary-stream-loan/pkg/amount"
)

type Repository interface {
	// Get returns ErrFlowNotFound when no flow exists for k.
	Get(ctx context.Context, k Key) (*Flow, error)
	Upsert(ctx context.Context, f *Flow) error
	Delete(ctx context.Context, k Key) error
	// InboundTotal sums the rates of every flow into receiver in token.
	InboundTotal(ctx context.Context, token, receiver string) (amount.Amount, error)
	OutboundTotal(ctx context.Context, token, sender string) (amount.Amount, error)
}
