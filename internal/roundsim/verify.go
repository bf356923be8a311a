package roundsim

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/okian/handicap/internal/domain/handicap"
	"github.com/okian/handicap/internal/domain/model"
	"github.com/okian/handicap/pkg/logger"
)

// ErrMismatch is returned when the service disagrees with a local computation.
var ErrMismatch = errors.New("handicap mismatch")

// verifyPlayers fetches every player's index and compares it with the index
// computed locally from the same rounds.
func verifyPlayers(ctx context.Context, cfg *Config, client *HTTPClient, players map[string][]model.Round, stats *Stats) error {
	log := logger.Named("verify")

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for player, rounds := range players {
		g.Go(func() error {
			var got handicapResponse
			code, err := client.getJSON(gctx, playerPath("/handicap/", player), &got)
			if err != nil {
				return fmt.Errorf("handicap for %s: %w", player, err)
			}
			want := handicap.Compute(rounds)

			mu.Lock()
			defer mu.Unlock()
			stats.PlayersVerified++
			if code != http.StatusOK || !sameIndex(want, got) {
				stats.Mismatches++
				if cfg.Verbose {
					log.Warn(gctx, "index mismatch",
						logger.String("player", player),
						logger.Int("status", code),
						logger.Any("want", want.Value),
						logger.Any("got", got.Value),
					)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info(ctx, "players verified",
		logger.Int("players", stats.PlayersVerified),
		logger.Int("mismatches", stats.Mismatches),
	)
	if stats.Mismatches > 0 {
		return fmt.Errorf("%w: %d of %d players", ErrMismatch, stats.Mismatches, stats.PlayersVerified)
	}
	return nil
}

func sameIndex(want handicap.Index, got handicapResponse) bool {
	if want.Established != got.Established || want.CountUsed != got.CountUsed {
		return false
	}
	if want.Value == nil || got.Value == nil {
		return want.Value == nil && got.Value == nil
	}
	return *want.Value == *got.Value
}

// verifyLeaderboard fetches the top entries and checks they are ranked
// consecutively and ordered established first, then by index.
func verifyLeaderboard(ctx context.Context, cfg *Config, client *HTTPClient, stats *Stats) error {
	var entries []leaderboardEntry
	code, err := client.getJSON(ctx, fmt.Sprintf("/leaderboard?limit=%d", cfg.TopN), &entries)
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	if code != http.StatusOK {
		return fmt.Errorf("leaderboard returned status %d", code)
	}
	stats.LeaderboardEntries = len(entries)

	for i, e := range entries {
		if e.Rank != i+1 {
			return fmt.Errorf("%w: entry %d has rank %d", ErrMismatch, i, e.Rank)
		}
		if i > 0 && ranksBefore(e, entries[i-1]) {
			return fmt.Errorf("%w: %s ranked below %s", ErrMismatch, e.PlayerID, entries[i-1].PlayerID)
		}
	}

	logger.Get().Info(ctx, "leaderboard verified", logger.Int("entries", len(entries)))
	if cfg.Verbose && len(entries) > 0 && entries[0].Index != nil {
		logger.Get().Info(ctx, "leader",
			logger.String("player", entries[0].PlayerID),
			logger.Float64("index", *entries[0].Index),
		)
	}
	return nil
}

// ranksBefore reports whether a should be ranked strictly ahead of b.
func ranksBefore(a, b leaderboardEntry) bool {
	if (a.Index != nil) != (b.Index != nil) {
		return a.Index != nil
	}
	if a.Index == nil {
		return false
	}
	if a.Established != b.Established {
		return a.Established
	}
	return *a.Index < *b.Index
}
