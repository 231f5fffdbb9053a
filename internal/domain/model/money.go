package model

import (
	"github.com/shopspring/decimal"
)

// Money is a decimal amount that renders as a JSON number with exactly
// two fractional digits. Arithmetic goes through the embedded Decimal
// at full precision; rounding happens only when the value is written out.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MustMoney parses s and panics on malformed input. Meant for constants
// and tests.
func MustMoney(s string) Money {
	return Money{Decimal: decimal.RequireFromString(s)}
}

// Rounded returns the amount rounded half away from zero to cents.
func (m Money) Rounded() Money {
	return Money{Decimal: m.Round(2)}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}
