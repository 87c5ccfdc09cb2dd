package types

import "errors"

var (
	ErrInvalidID        = errors.New("invalid identifier format")
	ErrInvalidRole      = errors.New("role must be Client, Trainer or Admin")
	ErrCurrencyRequired = errors.New("currency is required")
	ErrCurrencyInvalid  = errors.New("currency must be a 3-letter ISO 4217 code")
	ErrCurrencyMismatch = errors.New("currencies differ")
	ErrNegativeAmount   = errors.New("amount must not be negative")
)
