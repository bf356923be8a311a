package roundsim

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/handicap/internal/domain/handicap"
	"github.com/okian/handicap/internal/domain/model"
	"github.com/okian/handicap/pkg/logger"
)

// tees is the pool of courses rounds are played on.
var tees = []struct {
	course string
	rating float64
	slope  float64
	holes  int
}{
	{"Pine Valley", 72.4, 131, 18},
	{"Oak Hollow", 70.1, 118, 18},
	{"Links North", 73.6, 139, 18},
	{"Meadow", 69.2, 112, 18},
	{"Meadow 9", 34.6, 110, 9},
	{"Harbour 9", 35.8, 124, 9},
}

// Generation ranges.
const (
	maxSkill      = 36.0
	noiseLow      = -3
	noiseSpan     = 10
	roundInterval = 24 * time.Hour
)

// generateRounds builds RoundsPerPlayer rounds for each of Players players.
// Player and round ids carry a per-run prefix so repeated runs against one
// service never collide.
func generateRounds(ctx context.Context, cfg *Config, stats *Stats) []model.Round {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	run := uuid.NewString()[:8]
	start := time.Now().UTC().Add(-time.Duration(cfg.RoundsPerPlayer) * roundInterval).Truncate(time.Second)

	rounds := make([]model.Round, 0, cfg.Players*cfg.RoundsPerPlayer)
	for p := 0; p < cfg.Players; p++ {
		player := fmt.Sprintf("sim-%s-p%04d", run, p)
		skill := rng.Float64() * maxSkill
		for i := 0; i < cfg.RoundsPerPlayer; i++ {
			t := tees[rng.IntN(len(tees))]
			expected := t.rating + skill*t.slope/handicap.ReferenceSlope*float64(t.holes)/18
			ags := math.Round(expected + float64(noiseLow+rng.IntN(noiseSpan)))
			rounds = append(rounds, model.Round{
				ID:                 fmt.Sprintf("%s-r%03d", player, i),
				PlayerID:           player,
				Course:             t.course,
				AdjustedGrossScore: ags,
				CourseRating:       t.rating,
				SlopeRating:        t.slope,
				HolesPlayed:        t.holes,
				TS:                 start.Add(time.Duration(i) * roundInterval),
			})
		}
	}

	stats.RoundsGenerated = len(rounds)
	logger.Get().Info(ctx, "generated rounds",
		logger.Int("players", cfg.Players),
		logger.Int("rounds", len(rounds)),
		logger.String("run", run),
	)
	return rounds
}

// byPlayer groups rounds by player, keeping input order.
func byPlayer(rounds []model.Round) map[string][]model.Round {
	out := make(map[string][]model.Round)
	for _, r := range rounds {
		out[r.PlayerID] = append(out[r.PlayerID], r)
	}
	return out
}
