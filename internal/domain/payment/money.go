package payment

import (
	"errors"
	"strings"
)

var (
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrMissingCurrency = errors.New("currency is required")
)

// Money is an amount in the smallest currency unit.
type Money struct {
	amount   int64
	currency string
}

func NewMoney(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, ErrNegativeAmount
	}
	c := strings.ToLower(strings.TrimSpace(currency))
	if c == "" {
		return Money{}, ErrMissingCurrency
	}
	return Money{amount: amount, currency: c}, nil
}

func MustMoney(amount int64, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() int64    { return m.amount }
func (m Money) Currency() string { return m.currency }

func (m Money) Equal(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

func (m Money) IsZero() bool {
	return m.amount == 0
}
