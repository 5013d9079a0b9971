package stream

import (
	"context"
	"errors"

	domain "salary-stream-loan/internal/domain/stream"
	"salary-stream-loan/internal/domain/uow"
	"salary-stream-loan/pkg/amount"

	"go.uber.org/zap"
)

// Reactor is an account that must see every change to its inbound flows.
// Both calls run inside the transaction of the flow mutation.
type Reactor interface {
	Reactive(ctx context.Context, r uow.Repos, account string) (bool, error)
	// OnInboundFlowChanged receives the receiver's new total inbound rate in token.
	// Accounts it does not recognise must be ignored.
	OnInboundFlowChanged(ctx context.Context, r uow.Repos, receiver, token string, inbound amount.Amount) error
}

type Usecase struct {
	flows   domain.Repository
	uow     uow.UnitOfWork
	reactor Reactor
	log     *zap.Logger
}

// NewUsecase: reactor may be nil, in which case flows are plain bookkeeping.
func NewUsecase(flows domain.Repository, tx uow.UnitOfWork, reactor Reactor, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{flows: flows, uow: tx, reactor: reactor, log: log}
}

func (u *Usecase) CreateFlow(ctx context.Context, in FlowInput) (*FlowDTO, error) {
	if in.Rate.IsZero() {
		return nil, domain.ErrInvalidRate
	}
	err := u.mutate(ctx, key(in), func(r uow.Repos) error {
		if _, err := r.Flows.Get(ctx, key(in)); err == nil {
			return domain.ErrFlowExists
		} else if !errors.Is(err, domain.ErrFlowNotFound) {
			return err
		}
		return r.Flows.Upsert(ctx, &domain.Flow{Token: in.Token, Sender: in.Sender, Receiver: in.Receiver, Rate: in.Rate})
	})
	if err != nil {
		return nil, err
	}
	return toDTO(in), nil
}

func (u *Usecase) UpdateFlow(ctx context.Context, in FlowInput) (*FlowDTO, error) {
	if in.Rate.IsZero() {
		return nil, domain.ErrInvalidRate
	}
	err := u.mutate(ctx, key(in), func(r uow.Repos) error {
		f, err := r.Flows.Get(ctx, key(in))
		if err != nil {
			return err
		}
		f.Rate = in.Rate
		return r.Flows.Upsert(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	return toDTO(in), nil
}

// PutFlow creates the flow or updates its rate.
func (u *Usecase) PutFlow(ctx context.Context, in FlowInput) (*FlowDTO, bool, error) {
	_, err := u.flows.Get(ctx, key(in))
	switch {
	case errors.Is(err, domain.ErrFlowNotFound):
		dto, err := u.CreateFlow(ctx, in)
		return dto, true, err
	case err != nil:
		return nil, false, err
	}
	dto, err := u.UpdateFlow(ctx, in)
	return dto, false, err
}

func (u *Usecase) DeleteFlow(ctx context.Context, k domain.Key) error {
	return u.mutate(ctx, k, func(r uow.Repos) error {
		return r.Flows.Delete(ctx, k)
	})
}

func (u *Usecase) GetFlow(ctx context.Context, k domain.Key) (*FlowDTO, error) {
	f, err := u.flows.Get(ctx, k)
	if err != nil {
		return nil, err
	}
	return &FlowDTO{Token: f.Token, Sender: f.Sender, Receiver: f.Receiver, Rate: f.Rate}, nil
}

func (u *Usecase) GetNetFlow(ctx context.Context, token, account string) (*NetFlowDTO, error) {
	in, err := u.flows.InboundTotal(ctx, token, account)
	if err != nil {
		return nil, err
	}
	out, err := u.flows.OutboundTotal(ctx, token, account)
	if err != nil {
		return nil, err
	}
	n := domain.NetFlow{Account: account, Token: token, Inbound: in, Outbound: out}
	return &NetFlowDTO{Account: account, Token: token, Inbound: in, Outbound: out, Net: n.Net().String()}, nil
}

// mutate applies fn and notifies the receiver in one transaction. A reactor
// error rolls the flow change back.
func (u *Usecase) mutate(ctx context.Context, k domain.Key, fn func(r uow.Repos) error) error {
	if k.Sender == k.Receiver {
		return domain.ErrInvalidParties
	}
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if u.reactor != nil {
			owned, err := u.reactor.Reactive(ctx, r, k.Sender)
			if err != nil {
				return err
			}
			if owned {
				return domain.ErrUnauthorized
			}
		}
		if err := fn(r); err != nil {
			return err
		}
		if u.reactor == nil {
			return nil
		}
		inbound, err := r.Flows.InboundTotal(ctx, k.Token, k.Receiver)
		if err != nil {
			return err
		}
		if err := u.reactor.OnInboundFlowChanged(ctx, r, k.Receiver, k.Token, inbound); err != nil {
			u.log.Warn("flow reaction rejected",
				zap.String("token", k.Token),
				zap.String("sender", k.Sender),
				zap.String("receiver", k.Receiver),
				zap.Error(err))
			return err
		}
		return nil
	})
}

func key(in FlowInput) domain.Key {
	return domain.Key{Token: in.Token, Sender: in.Sender, Receiver: in.Receiver}
}

func toDTO(in FlowInput) *FlowDTO {
	return &FlowDTO{Token: in.Token, Sender: in.Sender, Receiver: in.Receiver, Rate: in.Rate}
}
