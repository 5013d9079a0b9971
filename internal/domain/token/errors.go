package token

import "errors"

var (
	ErrAllowanceInsufficient = errors.New("allowance insufficient")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInvalidAmount         = errors.New("amount must be positive")
)
