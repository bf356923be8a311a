package handicap

import "math"

// Selection says how many of the lowest differentials to average and what
// to add to the average.
type Selection struct {
	CountToUse int     `json:"count_to_use"`
	Adjustment float64 `json:"adjustment"`
}

// useAll marks rows where every available differential is used.
const useAll = -1

type selectionRow struct {
	min, max   int
	count      int
	adjustment float64
}

// selectionTable covers every n >= 0 with contiguous, non-overlapping rows.
var selectionTable = [...]selectionRow{
	{min: 0, max: 0, count: 0, adjustment: 0},
	{min: 1, max: 2, count: useAll, adjustment: 0},
	{min: 3, max: 3, count: 1, adjustment: -2.0},
	{min: 4, max: 4, count: 1, adjustment: -1.0},
	{min: 5, max: 5, count: 1, adjustment: 0},
	{min: 6, max: 6, count: 2, adjustment: -1.0},
	{min: 7, max: 8, count: 2, adjustment: 0},
	{min: 9, max: 11, count: 3, adjustment: 0},
	{min: 12, max: 14, count: 4, adjustment: 0},
	{min: 15, max: 16, count: 5, adjustment: 0},
	{min: 17, max: 18, count: 6, adjustment: 0},
	{min: 19, max: 19, count: 7, adjustment: 0},
	{min: 20, max: math.MaxInt, count: 8, adjustment: 0},
}

// Select looks up the selection for n available differentials. Negative n is
// treated as zero.
func Select(n int) Selection {
	if n < 0 {
		n = 0
	}
	for _, row := range selectionTable {
		if n < row.min || n > row.max {
			continue
		}
		count := row.count
		if count == useAll {
			count = n
		}
		return Selection{CountToUse: count, Adjustment: row.adjustment}
	}
	// unreachable: the last row is open ended
	return Selection{}
}
