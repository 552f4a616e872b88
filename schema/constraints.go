package schema

import (
	"math/big"
	"regexp"
)

// TextConstraints bound TextKind nodes. Lengths count runes, not
// bytes.
type TextConstraints struct {
	MinLength *int
	MaxLength *int
	Pattern   *regexp.Regexp
}

func (c *TextConstraints) empty() bool {
	return c == nil || (c.MinLength == nil && c.MaxLength == nil && c.Pattern == nil)
}

// NumConstraints bound IntegerKind and FloatKind nodes. Bounds and
// multiple-of are exact rationals; validation never compares floats
// with float arithmetic.
type NumConstraints struct {
	Min          *big.Rat
	Max          *big.Rat
	ExclusiveMin bool
	ExclusiveMax bool
	MultipleOf   *big.Rat
}

func (c *NumConstraints) empty() bool {
	return c == nil || (c.Min == nil && c.Max == nil && c.MultipleOf == nil)
}
