// Package fixedpoint implements the exact decimal pipeline applied to raw
// gauge readings before classification. All arithmetic is done on decimal
// values, never on binary floats, so the digit at the truncation/rounding
// boundary is always the digit the device sent.
package fixedpoint

import (
	"github.com/shopspring/decimal"
)

// Processed holds the three stages derived from one raw reading.
// Cut4 is Raw5 truncated toward zero at four decimal places; Rounded3 is
// Cut4 rounded half-up at three. Rounding Cut4 rather than Raw5 is
// deliberate: the two can disagree at boundary inputs.
type Processed struct {
	Raw5     decimal.Decimal
	Cut4     decimal.Decimal
	Rounded3 decimal.Decimal
}

// Truncate returns d truncated toward zero at the given number of decimal
// places. The sign is preserved: the magnitude is truncated, then the sign
// reapplied.
func Truncate(d decimal.Decimal, places int32) decimal.Decimal {
	t := d.Abs().Truncate(places)
	if d.IsNegative() {
		return t.Neg()
	}
	return t
}

// RoundHalfUp rounds d to the given number of decimal places. Exact ties
// (next digit is 5 with nothing beyond) round away from zero, symmetric for
// negative values.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	r := d.Abs().Round(places)
	if d.IsNegative() {
		return r.Neg()
	}
	return r
}

// Process fixes raw at five decimal places, truncates that to four, and
// half-up rounds the truncated value to three. The five-place fix uses
// decimal half-up, not binary-float half-even; device frames carry at most
// five decimals, so the two only differ for finer synthetic inputs, where
// the exact-decimal behaviour is the intended one. Pure; no failure path.
func Process(raw decimal.Decimal) Processed {
	raw5 := RoundHalfUp(raw, 5)
	cut4 := Truncate(raw5, 4)
	return Processed{
		Raw5:     raw5,
		Cut4:     cut4,
		Rounded3: RoundHalfUp(cut4, 3),
	}
}
