package model

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultSlope is assumed for rounds recorded without a Slope Rating.
const DefaultSlope = 113

// Strokes is a single hole score. It decodes from a JSON number or a numeric
// string; blanks, nulls and junk decode to zero the way the scorecard form
// treats them.
type Strokes float64

// UnmarshalJSON implements json.Unmarshaler.
func (s *Strokes) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(str))
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*s = 0
		return nil
	}
	*s = Strokes(v)
	return nil
}

// Scorecard is one card played by one or more players on the same tees.
type Scorecard struct {
	ID           string               `json:"id"`
	TS           time.Time            `json:"ts"`
	Course       string               `json:"course"`
	Holes        int                  `json:"holes"`
	Par          []Strokes            `json:"par"`
	Scores       map[string][]Strokes `json:"scores"`
	CourseRating *float64             `json:"cr,omitempty"`
	SlopeRating  *float64             `json:"slope,omitempty"`
	PCC          *float64             `json:"pcc,omitempty"`
}

// Players returns the card's players in name order.
func (c Scorecard) Players() []string {
	players := make([]string, 0, len(c.Scores))
	for p := range c.Scores {
		players = append(players, p)
	}
	sort.Strings(players)
	return players
}

// ParTotal sums par over the first Holes holes.
func (c Scorecard) ParTotal() float64 {
	return sumFirst(c.Par, c.Holes)
}

// Total sums a player's strokes over the first Holes holes.
func (c Scorecard) Total(player string) float64 {
	return sumFirst(c.Scores[player], c.Holes)
}

// Rounds expands the card into one Round per player. A missing Course Rating
// falls back to the par total, a missing Slope Rating to 113 and a missing
// PCC to 0.
func (c Scorecard) Rounds() []Round {
	rating := c.ParTotal()
	if isSet(c.CourseRating) {
		rating = *c.CourseRating
	}
	slope := float64(DefaultSlope)
	if isSet(c.SlopeRating) {
		slope = *c.SlopeRating
	}
	pcc := 0.0
	if isSet(c.PCC) {
		pcc = *c.PCC
	}

	holes := max(c.Holes, 0)
	players := c.Players()
	rounds := make([]Round, 0, len(players))
	for _, p := range players {
		rounds = append(rounds, Round{
			ID:                 c.ID + ":" + p,
			PlayerID:           p,
			Course:             c.Course,
			AdjustedGrossScore: c.Total(p),
			CourseRating:       rating,
			SlopeRating:        slope,
			PCC:                pcc,
			HolesPlayed:        holes,
			TS:                 c.TS,
		})
	}
	return rounds
}

func isSet(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func sumFirst(values []Strokes, n int) float64 {
	if n > len(values) {
		n = len(values)
	}
	total := 0.0
	for _, v := range values[:max(n, 0)] {
		total += float64(v)
	}
	return total
}
