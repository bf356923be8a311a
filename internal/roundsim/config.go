package roundsim

import (
	"time"

	"github.com/okian/handicap/internal/domain/model"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL         string        // Base URL of the service
	Players         int           // Number of players to generate
	RoundsPerPlayer int           // Rounds generated for each player
	TopN            int           // Leaderboard entries to fetch
	Workers         int           // Concurrent submitters
	Timeout         time.Duration // HTTP request timeout
	SettleTimeout   time.Duration // How long to wait for ingestion
	Seed            uint64        // Seed for round generation
	InputFile       string        // Optional file of rounds to submit instead of generating
	OutputFile      string        // Optional export file for the submitted rounds
	Verbose         bool          // Log every mismatch and progress line
}

// Stats holds run statistics.
type Stats struct {
	RoundsGenerated    int
	RoundsSubmitted    int
	RoundsAccepted     int
	RoundsDuplicate    int
	RoundsFailed       int
	PlayersVerified    int
	Mismatches         int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

// roundPayload is the POST /rounds body.
type roundPayload struct {
	ID       string  `json:"id"`
	PlayerID string  `json:"player_id"`
	Course   string  `json:"course,omitempty"`
	AGS      float64 `json:"ags"`
	CR       float64 `json:"cr"`
	Slope    float64 `json:"slope"`
	PCC      float64 `json:"pcc"`
	Holes    int     `json:"holes"`
	TS       string  `json:"ts,omitempty"`
}

func newRoundPayload(r model.Round) roundPayload {
	p := roundPayload{
		ID:       r.ID,
		PlayerID: r.PlayerID,
		Course:   r.Course,
		AGS:      r.AdjustedGrossScore,
		CR:       r.CourseRating,
		Slope:    r.SlopeRating,
		PCC:      r.PCC,
		Holes:    r.HolesPlayed,
	}
	if !r.TS.IsZero() {
		p.TS = r.TS.UTC().Format(time.RFC3339)
	}
	return p
}

// submitResponse mirrors the acknowledgement of POST /rounds.
type submitResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// handicapResponse is the subset of GET /handicap/{player} that is verified.
type handicapResponse struct {
	PlayerID    string   `json:"player_id"`
	Value       *float64 `json:"value"`
	Established bool     `json:"established"`
	CountUsed   int      `json:"count_used"`
}

// leaderboardEntry mirrors one row of GET /leaderboard.
type leaderboardEntry struct {
	Rank        int      `json:"rank"`
	PlayerID    string   `json:"player_id"`
	Index       *float64 `json:"index"`
	Established bool     `json:"established"`
}
