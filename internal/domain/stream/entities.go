package stream

import (
	"math/big"
	"time"

	"salary-stream-loan/pkg/amount"
)

// Flow is a constant per-second transfer of Token from Sender to Receiver.
// At most one flow exists per (token, sender, receiver); a deleted flow is removed.
type Flow struct {
	ID        uint64        `gorm:"primaryKey;column:id;autoIncrement" json:"-"`
	Token     string        `gorm:"column:token;size:64;not null;uniqueIndex:ux_flows_key,priority:1;index:idx_flows_receiver,priority:1" json:"token"`
	Sender    string        `gorm:"column:sender;size:32;not null;uniqueIndex:ux_flows_key,priority:2" json:"sender"`
	Receiver  string        `gorm:"column:receiver;size:32;not null;uniqueIndex:ux_flows_key,priority:3;index:idx_flows_receiver,priority:2" json:"receiver"`
	Rate      amount.Amount `gorm:"column:rate;type:varchar(80);not null" json:"rate"`
	CreatedAt time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Flow) TableName() string { return "flows" }

type Key struct {
	Token    string
	Sender   string
	Receiver string
}

// NetFlow is what an account gains per second in one token. Net may be negative.
type NetFlow struct {
	Account  string        `json:"account"`
	Token    string        `json:"token"`
	Inbound  amount.Amount `json:"inbound"`
	Outbound amount.Amount `json:"outbound"`
}

func (n NetFlow) Net() *big.Int {
	return new(big.Int).Sub(n.Inbound.Big(), n.Outbound.Big())
}
