package loan

import (
	"time"

	"salary-stream-loan/internal/domain/loan"

	"go.uber.org/zap"
)

// Metrics receives loan events. Implementations must not block.
type Metrics interface {
	Reallocated(outcome loan.Outcome)
	Transitioned(from, to loan.State)
}

type nopMetrics struct{}

func (nopMetrics) Reallocated(loan.Outcome) {}
func (nopMetrics) Transitioned(loan.State, loan.State) {}

type Option func(*Usecase)

func WithLogger(l *zap.Logger) Option { return func(u *Usecase) { u.log = l } }

func WithMetrics(m Metrics) Option { return func(u *Usecase) { u.metrics = m } }

func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }
