// Package money implements exact fixed-point arithmetic for currency amounts.
//
// An amount is represented as whole units plus a nano fraction. All arithmetic
// happens in an integer nano-unit domain (units*1e9 + nanos) so repeated
// operations never accumulate rounding drift the way a float round-trip would.
package money

import (
	"errors"
	"fmt"
)

const nanosPerUnit = 1_000_000_000

// ErrMismatchedCurrency is returned when an operation receives two amounts in
// different currencies. Callers must convert first; the mismatch is a data or
// programming error and is never silently absorbed.
var ErrMismatchedCurrency = errors.New("money: mismatched currency codes")

// Money is an amount of a single currency.
//
// Units may be negative (refunds). Nanos is always in [0, 999_999_999], even
// for negative amounts: -1.75 is {Units: -2, Nanos: 250_000_000}.
type Money struct {
	CurrencyCode string `json:"currencyCode"`
	Units        int64  `json:"units"`
	Nanos        int32  `json:"nanos"`
}

// New builds a Money from units and nanos without normalization.
func New(code string, units int64, nanos int32) Money {
	return Money{CurrencyCode: code, Units: units, Nanos: nanos}
}

// FromNanos builds a normalized Money from a total nano-unit amount.
func FromNanos(code string, total int64) Money {
	units := total / nanosPerUnit
	nanos := total % nanosPerUnit
	if nanos < 0 {
		units--
		nanos += nanosPerUnit
	}
	return Money{CurrencyCode: code, Units: units, Nanos: int32(nanos)}
}

// TotalNanos returns the amount in nano-units.
func (m Money) TotalNanos() int64 {
	return m.Units*nanosPerUnit + int64(m.Nanos)
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Units == 0 && m.Nanos == 0
}

// Add returns a+b. Both amounts must carry the same currency code.
func Add(a, b Money) (Money, error) {
	if a.CurrencyCode != b.CurrencyCode {
		return Money{}, fmt.Errorf("add %q + %q: %w", a.CurrencyCode, b.CurrencyCode, ErrMismatchedCurrency)
	}
	return FromNanos(a.CurrencyCode, a.TotalNanos()+b.TotalNanos()), nil
}

// Scale returns m multiplied by a non-negative integer factor, exactly.
// A negative factor violates the contract and panics.
func Scale(m Money, factor int64) Money {
	if factor < 0 {
		panic(fmt.Sprintf("money: negative scale factor %d", factor))
	}
	return FromNanos(m.CurrencyCode, m.TotalNanos()*factor)
}

// Sum adds all amounts, which must share one currency code. An empty input
// yields a zero amount in the given currency.
func Sum(code string, amounts ...Money) (Money, error) {
	total := Money{CurrencyCode: code}
	for _, a := range amounts {
		var err error
		total, err = Add(total, a)
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

// Compare returns -1, 0 or +1 ordering a against b.
// Both amounts must carry the same currency code.
func Compare(a, b Money) (int, error) {
	if a.CurrencyCode != b.CurrencyCode {
		return 0, fmt.Errorf("compare %q vs %q: %w", a.CurrencyCode, b.CurrencyCode, ErrMismatchedCurrency)
	}
	an, bn := a.TotalNanos(), b.TotalNanos()
	switch {
	case an < bn:
		return -1, nil
	case an > bn:
		return 1, nil
	default:
		return 0, nil
	}
}

var symbols = map[string]string{
	"USD": "$",
	"CAD": "$",
	"JPY": "¥",
	"EUR": "€",
	"TRY": "₺",
	"GBP": "£",
}

// Symbol returns the display symbol for a currency code. Unknown codes fall
// back to "$"; the lookup is deliberately permissive, not an error.
func Symbol(code string) string {
	if s, ok := symbols[code]; ok {
		return s
	}
	return "$"
}

// Format renders an amount for display: symbol, units, and the fraction
// truncated to two digits, e.g. "€8.99". Display output only — never feed it
// back into arithmetic.
func Format(m Money) string {
	cents := m.Nanos / 10_000_000
	return fmt.Sprintf("%s%d.%02d", Symbol(m.CurrencyCode), m.Units, cents)
}
