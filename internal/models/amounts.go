// Package models defines the domain types shared across sipfolio services.
package models

import "github.com/shopspring/decimal"

// Interior arithmetic stays exact; rounding happens once, here, when a value
// crosses the JSON boundary. The rule everywhere is round half to even.

// Money is a rupee amount rendered with two decimal places in JSON.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps an exact decimal amount for output.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.RoundBank(2).StringFixed(2)), nil
}

// Percent is a percentage rendered with two decimal places in JSON.
type Percent struct {
	decimal.Decimal
}

// NewPercent wraps an exact percentage value for output.
func NewPercent(d decimal.Decimal) Percent {
	return Percent{Decimal: d}
}

func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(p.RoundBank(2).StringFixed(2)), nil
}

// NAVValue is a per-unit price rendered with four decimal places in JSON,
// matching AMFI's published precision.
type NAVValue struct {
	decimal.Decimal
}

// NewNAVValue wraps an exact per-unit price for output.
func NewNAVValue(d decimal.Decimal) NAVValue {
	return NAVValue{Decimal: d}
}

func (n NAVValue) MarshalJSON() ([]byte, error) {
	return []byte(n.RoundBank(4).StringFixed(4)), nil
}

// Quantity is a unit balance rendered at full precision in JSON. Unit sums
// are exact by construction and are never rounded.
type Quantity struct {
	decimal.Decimal
}

// NewQuantity wraps an exact unit balance for output.
func NewQuantity(d decimal.Decimal) Quantity {
	return Quantity{Decimal: d}
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}
