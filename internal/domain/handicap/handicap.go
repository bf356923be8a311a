// Package handicap computes Handicap Indexes and Course Handicaps from round
// history.
//
// Every function in this package is pure: inputs are passed in, results are
// returned, and nothing is cached between calls. Rounding is always
// half away from zero and is carried out on exact decimals so that binary
// float artifacts never move a value across a .5 boundary.
package handicap

import (
	"math"

	"github.com/shopspring/decimal"
)

// Rule constants.
const (
	// ReferenceSlope is the Slope Rating of a course of standard difficulty.
	ReferenceSlope = 113
	// WindowSize is how many of the most recent rounds are considered.
	WindowSize = 20
	// EstablishedHoles is the number of windowed holes needed for an
	// established (publishable) index.
	EstablishedHoles = 54

	differentialPlaces int32 = 2
	indexPlaces        int32 = 1
)

var referenceSlope = decimal.NewFromInt(ReferenceSlope)

// Index is the result of aggregating a player's round history.
type Index struct {
	// Value is nil when no valid differential was available.
	Value *float64 `json:"value"`
	// CountUsed is how many of the lowest differentials were averaged.
	CountUsed int `json:"count_used"`
	// Adjustment is the additive correction applied for small samples.
	Adjustment float64 `json:"adjustment"`
	// Established reports whether the windowed rounds cover enough holes.
	Established bool `json:"established"`

	DifferentialsAvailable int `json:"differentials_available"`
	HolesPlayed            int `json:"holes_played"`
	HolesRemaining         int `json:"holes_remaining"`
}

// HasValue reports whether an index value could be computed.
func (i Index) HasValue() bool { return i.Value != nil }

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func roundFloat(d decimal.Decimal, places int32) float64 {
	return d.Round(places).InexactFloat64()
}
