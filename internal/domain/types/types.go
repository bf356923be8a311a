// Package types contains read models shared by the service and the HTTP API.
package types

import (
	"time"

	"github.com/okian/handicap/internal/domain/handicap"
)

// Entry represents a leaderboard row.
type Entry struct {
	Rank        int      `json:"rank"`
	PlayerID    string   `json:"player_id"`
	Index       *float64 `json:"index"`
	Established bool     `json:"established"`
	Rounds      int      `json:"rounds"`
}

// Handicap is a player's current index together with the Course Handicap for
// one set of tees.
type Handicap struct {
	PlayerID string `json:"player_id"`
	handicap.Index
	TargetSlope float64 `json:"target_slope"`
	// CourseHandicap is nil when there is no index value.
	CourseHandicap *int `json:"course_handicap"`
	// Provisional is set when a value exists but is not yet established.
	Provisional bool `json:"provisional"`
}

// RoundEntry is one stored round with its derived differential.
type RoundEntry struct {
	ID                 string    `json:"id"`
	Course             string    `json:"course,omitempty"`
	TS                 time.Time `json:"ts"`
	HolesPlayed        int       `json:"holes"`
	AdjustedGrossScore float64   `json:"ags"`
	CourseRating       float64   `json:"cr"`
	SlopeRating        float64   `json:"slope"`
	PCC                float64   `json:"pcc"`
	Differential       *float64  `json:"differential"`
	InWindow           bool      `json:"in_window"`
	Used               bool      `json:"used"`
}

// History is a player's rounds, oldest first, and the index they produce.
type History struct {
	PlayerID string         `json:"player_id"`
	Index    handicap.Index `json:"index"`
	Rounds   []RoundEntry   `json:"rounds"`
}

// Profile summarises a player's scoring.
type Profile struct {
	PlayerID string         `json:"player_id"`
	Index    handicap.Index `json:"index"`
	// Best9 and Best18 are the lowest gross totals for 9 and 18 hole rounds.
	Best9   *float64                `json:"best_9"`
	Best18  *float64                `json:"best_18"`
	Rounds  int                     `json:"rounds"`
	Courses map[string][]RoundEntry `json:"courses"`
}

// CourseEntry is a player's best gross score at one course.
type CourseEntry struct {
	Rank     int       `json:"rank"`
	PlayerID string    `json:"player_id"`
	Gross    float64   `json:"gross"`
	RoundID  string    `json:"round_id"`
	TS       time.Time `json:"ts"`
}
