package mysql

import (
	"context"
	"errors"
	"fmt"

	"salary-stream-loan/internal/domain/stream"
	"salary-stream-loan/pkg/amount"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FlowRepository struct{ db *gorm.DB }

func NewFlowRepository(db *gorm.DB) *FlowRepository { return &FlowRepository{db: db} }

func (r *FlowRepository) Get(ctx context.Context, k stream.Key) (*stream.Flow, error) {
	var out stream.Flow
	err := r.db.WithContext(ctx).
		Where("token = ? AND sender = ? AND receiver = ?", k.Token, k.Sender, k.Receiver).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, stream.ErrFlowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Upsert keys on (token, sender, receiver) and only ever rewrites the rate.
func (r *FlowRepository) Upsert(ctx context.Context, f *stream.Flow) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}, {Name: "sender"}, {Name: "receiver"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
	}).Create(f).Error
}

func (r *FlowRepository) Delete(ctx context.Context, k stream.Key) error {
	res := r.db.WithContext(ctx).
		Where("token = ? AND sender = ? AND receiver = ?", k.Token, k.Sender, k.Receiver).
		Delete(&stream.Flow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return stream.ErrFlowNotFound
	}
	return nil
}

func (r *FlowRepository) InboundTotal(ctx context.Context, token, receiver string) (amount.Amount, error) {
	return r.sum(ctx, "token = ? AND receiver = ?", token, receiver)
}

func (r *FlowRepository) OutboundTotal(ctx context.Context, token, sender string) (amount.Amount, error) {
	return r.sum(ctx, "token = ? AND sender = ?", token, sender)
}

// sum adds rates in Go; they are stored as decimal strings wider than any SQL integer.
func (r *FlowRepository) sum(ctx context.Context, where string, args ...any) (amount.Amount, error) {
	var rates []string
	err := r.db.WithContext(ctx).Model(&stream.Flow{}).Where(where, args...).Pluck("rate", &rates).Error
	if err != nil {
		return amount.Zero(), err
	}
	parsed := make([]amount.Amount, len(rates))
	for i, s := range rates {
		if parsed[i], err = amount.Parse(s); err != nil {
			return amount.Zero(), fmt.Errorf("flow rate %q: %w", s, err)
		}
	}
	return amount.Sum(parsed...), nil
}
