// Package money provides the fixed-point currency unit used for every stake,
// pot, debt and ledger delta.
//
// Amounts are int64 minor units (cents). All arithmetic is integer-only.
package money

import "fmt"

// CentsPerDollar is the number of minor units in one major unit.
const CentsPerDollar = 100

// Money is an amount in cents. Stakes and pots are non-negative; ledger
// deltas are signed.
type Money int64

// Zero is the zero amount.
const Zero Money = 0

// Cents creates a Money value from minor units.
func Cents(c int64) Money { return Money(c) }

// FromDollars converts whole dollars to Money.
func FromDollars(d int64) Money { return Money(d * CentsPerDollar) }

// Cents returns the amount in minor units.
func (m Money) Cents() int64 { return int64(m) }

// Add returns m + other.
func (m Money) Add(other Money) Money { return m + other }

// Sub returns m - other.
func (m Money) Sub(other Money) Money { return m - other }

// Neg returns -m.
func (m Money) Neg() Money { return -m }

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool { return m > 0 }

// IsNegative reports whether m < 0.
func (m Money) IsNegative() bool { return m < 0 }

// MulDiv returns m * num / den using integer division, which truncates toward
// zero (floor for non-negative operands). The remainder is discarded; callers
// that must conserve it track it themselves.
func (m Money) MulDiv(num, den int64) Money {
	if den == 0 {
		panic("money: division by zero")
	}
	return Money(int64(m) * num / den)
}

// String renders the amount in dollars, e.g. "$10.00" or "-$0.05".
func (m Money) String() string {
	c := int64(m)
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s$%d.%02d", sign, c/CentsPerDollar, c%CentsPerDollar)
}

// Sum adds up all values.
func Sum(values ...Money) Money {
	var total Money
	for _, v := range values {
		total += v
	}
	return total
}

// Clamp bounds whole dollars to [lo, hi].
func Clamp(dollars, lo, hi int64) int64 {
	return max(lo, min(hi, dollars))
}
