package errors

import "errors"

var (
	ErrInvalidTreasuryInput = errors.New("invalid treasury operation input")
	ErrBalancesNotCached    = errors.New("treasury balances not cached yet")
)
