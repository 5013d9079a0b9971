package mysql

import (
	"context"
	"errors"

	"salary-stream-loan/internal/domain/token"
	"salary-stream-loan/pkg/amount"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TokenRepository struct{ db *gorm.DB }

func NewTokenRepository(db *gorm.DB) *TokenRepository { return &TokenRepository{db: db} }

func (r *TokenRepository) Balance(ctx context.Context, tok, account string) (amount.Amount, error) {
	var b token.Balance
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("token = ? AND account = ?", tok, account).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return amount.Zero(), nil
	}
	return b.Amount, err
}

func (r *TokenRepository) SetBalance(ctx context.Context, tok, account string, a amount.Amount) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}, {Name: "account"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&token.Balance{Token: tok, Account: account, Amount: a}).Error
}

func (r *TokenRepository) Allowance(ctx context.Context, tok, owner, spender string) (amount.Amount, error) {
	var al token.Allowance
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("token = ? AND owner = ? AND spender = ?", tok, owner, spender).
		First(&al).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return amount.Zero(), nil
	}
	return al.Amount, err
}

func (r *TokenRepository) SetAllowance(ctx context.Context, tok, owner, spender string, a amount.Amount) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}, {Name: "owner"}, {Name: "spender"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&token.Allowance{Token: tok, Owner: owner, Spender: spender, Amount: a}).Error
}
