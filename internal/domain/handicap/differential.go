package handicap

import (
	"github.com/okian/handicap/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Differential normalizes one round against course difficulty:
//
//	(113 / slope) * (ags - courseRating - pcc), rounded to 2 decimals.
//
// ok is false when ags, courseRating or slopeRating is not finite, or when
// slopeRating <= 0. A non-finite pcc is treated as 0.
func Differential(ags, courseRating, slopeRating, pcc float64) (value float64, ok bool) {
	d, ok := differential(ags, courseRating, slopeRating, pcc)
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// RoundDifferential is Differential applied to a round record.
func RoundDifferential(r model.Round) (float64, bool) {
	return Differential(r.AdjustedGrossScore, r.CourseRating, r.SlopeRating, r.PCC)
}

// differential returns the already rounded decimal so that aggregation works
// on exactly the 2-decimal values a caller would see.
func differential(ags, courseRating, slopeRating, pcc float64) (decimal.Decimal, bool) {
	if !finite(ags) || !finite(courseRating) || !finite(slopeRating) || slopeRating <= 0 {
		return decimal.Zero, false
	}
	if !finite(pcc) {
		pcc = 0
	}
	gap := decimal.NewFromFloat(ags).
		Sub(decimal.NewFromFloat(courseRating)).
		Sub(decimal.NewFromFloat(pcc))
	d := gap.Mul(referenceSlope).Div(decimal.NewFromFloat(slopeRating))
	return d.Round(differentialPlaces), true
}
