package types

import (
	"fmt"
	"strings"
)

// DefaultCurrency applies when a price is entered without one.
const DefaultCurrency = "USD"

// Money is an amount in minor units (cents, piasters) of an ISO 4217
// currency. The zero value is an empty amount with no currency.
type Money struct {
	amount   int64
	currency string
}

// NewMoney normalizes currency to upper case. Amounts may not be negative.
func NewMoney(amount int64, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	switch {
	case currency == "":
		return Money{}, ErrCurrencyRequired
	case len(currency) != 3:
		return Money{}, ErrCurrencyInvalid
	case amount < 0:
		return Money{}, ErrNegativeAmount
	}
	return Money{amount: amount, currency: currency}, nil
}

// MustNewMoney is NewMoney for values already validated, such as stored rows.
func MustNewMoney(amount int64, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() int64    { return m.amount }
func (m Money) Currency() string { return m.currency }
func (m Money) IsZero() bool     { return m.amount == 0 }

// Add fails with ErrCurrencyMismatch when currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Subtract fails with ErrCurrencyMismatch when currencies differ.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s - %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// Percent returns bps basis points of m (1500 is 15%), rounded half up to
// the nearest minor unit.
func (m Money) Percent(bps int64) Money {
	return Money{amount: (m.amount*bps + 5000) / 10000, currency: m.currency}
}

// String renders two decimal places, e.g. "29.99 EGP".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.amount/100, m.amount%100, m.currency)
}
