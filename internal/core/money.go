// Package core holds the domain types shared by the ledger, storage and
// analytics layers: money amounts, accounts, categories, transactions,
// debts and the closed set of domain errors.
package core

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a signed amount in cents. All arithmetic happens on cents;
// decimals are only used at the parsing/formatting boundary.
type Money struct {
	Cents int64
}

// ParseAmount converts a user-supplied decimal string to Money.
//
// It accepts both dot (12.34) and comma (12,34) separators, performs half-up
// rounding past the second decimal place and rejects zero or negative values.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.BigInt().IsInt64() {
		return Money{}, ErrInvalidAmount
	}
	v := cents.IntPart()
	if v <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: v}, nil
}

// Decimal returns the amount as a decimal value (euros, dollars, ...).
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two decimal places.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as a two-decimal string, the same shape
// the API accepts on input.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// Float returns the amount as a float64 for display and ratio computations.
// Keep calculations on cents where exactness matters.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) Neg() Money        { return Money{Cents: -m.Cents} }

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.Cents > 0 }

// Validate checks that the amount is usable as a transaction amount.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
