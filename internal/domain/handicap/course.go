package handicap

import "github.com/shopspring/decimal"

// CourseHandicap scales an index to a course of the given Slope Rating:
// round(index * targetSlope / 113). ok is false when the index has no value
// or targetSlope is not a finite positive number.
func CourseHandicap(idx Index, targetSlope float64) (strokes int, ok bool) {
	if idx.Value == nil || !finite(targetSlope) || targetSlope <= 0 {
		return 0, false
	}
	ch := decimal.NewFromFloat(*idx.Value).
		Mul(decimal.NewFromFloat(targetSlope)).
		Div(referenceSlope).
		Round(0)
	return int(ch.IntPart()), true
}
