package token

import (
	"time"

	"salary-stream-loan/pkg/amount"
)

// Balance is an account's holding of the streamable form of Token.
type Balance struct {
	Token     string        `gorm:"primaryKey;column:token;size:64"`
	Account   string        `gorm:"primaryKey;column:account;size:32"`
	Amount    amount.Amount `gorm:"column:amount;type:varchar(80);not null"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (Balance) TableName() string { return "token_balances" }

// Allowance is how much Spender may still pull from Owner.
type Allowance struct {
	Token     string        `gorm:"primaryKey;column:token;size:64"`
	Owner     string        `gorm:"primaryKey;column:owner;size:32"`
	Spender   string        `gorm:"primaryKey;column:spender;size:32"`
	Amount    amount.Amount `gorm:"column:amount;type:varchar(80);not null"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (Allowance) TableName() string { return "token_allowances" }
