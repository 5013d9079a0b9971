package stream

import "errors"

var (
	ErrFlowExists     = errors.New("flow already exists")
	ErrFlowNotFound   = errors.New("flow not found")
	ErrInvalidRate    = errors.New("flow rate must be positive")
	ErrInvalidParties = errors.New("flow sender and receiver must differ")
	ErrUnauthorized   = errors.New("flow can only be changed by its sender")
)
