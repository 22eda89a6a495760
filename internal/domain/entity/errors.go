package entity

import "errors"

var (
	ErrNonPositiveValue  = errors.New("value must be greater than zero")
	ErrOwnerMismatch     = errors.New("record does not belong to this user")
	ErrInsufficientFunds = errors.New("insufficient wallet funds")
)
