package loan

import "errors"

var (
	ErrInvalidTerms          = errors.New("invalid loan terms")
	ErrNotFound              = errors.New("loan not found")
	ErrAlreadyFunded         = errors.New("loan already funded")
	ErrWrongState            = errors.New("loan not in a state that allows this operation")
	ErrAllowanceInsufficient = errors.New("approved allowance is below the required amount")
	ErrUnauthorized          = errors.New("caller is not permitted to perform this operation")
	ErrTermNotElapsed        = errors.New("loan term has not elapsed")
	ErrInvalidParty          = errors.New("lender must differ from borrower and loan account")
	ErrUnsupportedStream     = errors.New("stream not recognised by loan")
)
