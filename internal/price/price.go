// Package price represents order book prices as fixed-point ticks instead
// of binary floats, per the design note in this system's specification:
// a float64 price is hash/equality-hazardous as a price-level map key.
package price

import (
	"fmt"
	"math"
	"strconv"
)

// Ticks is a price expressed as an integer number of hundredths (the
// input feed's two-decimal semantic), e.g. 100.50 is Ticks(10050).
type Ticks int64

// Scale is the number of Ticks per unit price (two decimal places).
const Scale = 100

// FromFloat converts a float64 price (as parsed from the input feed) into
// Ticks, rounding to the nearest hundredth.
func FromFloat(f float64) Ticks {
	return Ticks(math.Round(f * Scale))
}

// ParseFloat parses a decimal string as a float64 and converts it to
// Ticks via FromFloat, rounding to the nearest hundredth.
func ParseFloat(s string) (Ticks, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	return FromFloat(f), nil
}

// Float64 converts Ticks back to a float64 price.
func (t Ticks) Float64() float64 {
	return float64(t) / Scale
}

// String formats Ticks as a fixed two-decimal price string, or the empty
// string for a zero price, matching the output schema's convention that a
// zero price renders as blank.
func (t Ticks) String() string {
	if t == 0 {
		return ""
	}
	sign := ""
	v := int64(t)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/Scale, v%Scale)
}
