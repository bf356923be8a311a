package handicap

import (
	"sort"

	"github.com/okian/handicap/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Scored pairs a round with its derived differential and the part it played
// in the index.
type Scored struct {
	Round model.Round
	// Differential is nil when the round's inputs are invalid.
	Differential *float64
	// InWindow is true for the most recent WindowSize rounds.
	InWindow bool
	// Used is true when the differential was one of those averaged.
	Used bool
}

// Window returns the most recent WindowSize rounds in ascending time order.
// Rounds with equal timestamps keep their relative input order. The input
// slice is not modified.
func Window(rounds []model.Round) []model.Round {
	ordered := chronological(rounds)
	if len(ordered) > WindowSize {
		ordered = ordered[len(ordered)-WindowSize:]
	}
	return ordered
}

// Compute derives the Handicap Index for one player's rounds.
func Compute(rounds []model.Round) Index {
	idx, _ := Evaluate(rounds)
	return idx
}

// Evaluate derives the Handicap Index and reports, for every round in
// ascending time order, its differential and whether it fed the index.
func Evaluate(rounds []model.Round) (Index, []Scored) {
	ordered := chronological(rounds)
	scored := make([]Scored, len(ordered))

	start := max(0, len(ordered)-WindowSize)

	type candidate struct {
		pos   int
		value decimal.Decimal
	}
	candidates := make([]candidate, 0, len(ordered)-start)
	holes := 0

	for i, r := range ordered {
		scored[i].Round = r
		d, ok := differential(r.AdjustedGrossScore, r.CourseRating, r.SlopeRating, r.PCC)
		if ok {
			v := d.InexactFloat64()
			scored[i].Differential = &v
		}
		if i < start {
			continue
		}
		scored[i].InWindow = true
		if r.HolesPlayed > 0 {
			holes += r.HolesPlayed
		}
		if ok {
			candidates = append(candidates, candidate{pos: i, value: d})
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].value.LessThan(candidates[b].value)
	})

	sel := Select(len(candidates))
	idx := Index{
		CountUsed:              sel.CountToUse,
		Adjustment:             sel.Adjustment,
		Established:            Established(holes),
		DifferentialsAvailable: len(candidates),
		HolesPlayed:            holes,
		HolesRemaining:         HolesRemaining(holes),
	}
	if sel.CountToUse == 0 {
		return idx, scored
	}

	sum := decimal.Zero
	for _, c := range candidates[:sel.CountToUse] {
		sum = sum.Add(c.value)
		scored[c.pos].Used = true
	}
	avg := sum.Div(decimal.NewFromInt(int64(sel.CountToUse)))
	value := roundFloat(avg.Add(decimal.NewFromFloat(sel.Adjustment)), indexPlaces)
	idx.Value = &value

	return idx, scored
}

func chronological(rounds []model.Round) []model.Round {
	ordered := make([]model.Round, len(rounds))
	copy(ordered, rounds)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TS.Before(ordered[j].TS)
	})
	return ordered
}
