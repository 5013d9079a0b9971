package stream

import "salary-stream-loan/pkg/amount"

type FlowInput struct {
	Token    string
	Sender   string
	Receiver string
	Rate     amount.Amount
}

type FlowDTO struct {
	Token    string        `json:"token"`
	Sender   string        `json:"sender"`
	Receiver string        `json:"receiver"`
	Rate     amount.Amount `json:"rate"`
}

type NetFlowDTO struct {
	Account  string        `json:"account"`
	Token    string        `json:"token"`
	Inbound  amount.Amount `json:"inbound"`
	Outbound amount.Amount `json:"outbound"`
	Net      string        `json:"net"`
}
