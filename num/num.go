// Package num provides exact arithmetic over document numbers.
//
// Range and multiple-of checks must never go through float comparison:
// a binary float is an exact rational, and comparing it as such avoids
// the rounding false negatives a float epsilon would introduce. Every
// integer and finite float converts losslessly to a big.Rat.
package num

import (
	"math"
	"math/big"

	"github.com/eure-format/go-eure/ir"
)

// Rat converts an Integer or finite Float value to an exact rational.
// Non-numeric kinds, NaN, and infinities report false.
func Rat(v ir.Value) (*big.Rat, bool) {
	switch v.Kind {
	case ir.IntegerKind:
		return new(big.Rat).SetInt64(v.Int), true
	case ir.FloatKind:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return nil, false
		}
		return new(big.Rat).SetFloat64(v.Float), true
	}
	return nil, false
}

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater
// than b.
func Compare(a, b *big.Rat) int { return a.Cmp(b) }

// CheckMin reports whether v satisfies the lower bound.
func CheckMin(v, min *big.Rat, exclusive bool) bool {
	c := v.Cmp(min)
	if exclusive {
		return c > 0
	}
	return c >= 0
}

// CheckMax reports whether v satisfies the upper bound.
func CheckMax(v, max *big.Rat, exclusive bool) bool {
	c := v.Cmp(max)
	if exclusive {
		return c < 0
	}
	return c <= 0
}

// IsMultipleOf reports whether v is an exact integer multiple of m.
// m must be non-zero.
func IsMultipleOf(v, m *big.Rat) bool {
	q := new(big.Rat).Quo(v, m)
	return q.IsInt()
}
