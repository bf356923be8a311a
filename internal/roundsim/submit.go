package roundsim

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/handicap/internal/domain/model"
	"github.com/okian/handicap/pkg/logger"
)

// Submission outcomes.
const (
	resultAccepted  = "accepted"
	resultDuplicate = "duplicate"
	resultFailed    = "failed"
)

const (
	progressInterval = time.Second
	backoff          = 50 * time.Millisecond
	maxAttempts      = 5
)

// submitRounds posts every round using cfg.Workers concurrent submitters.
func submitRounds(ctx context.Context, cfg *Config, client *HTTPClient, rounds []model.Round, stats *Stats) error {
	log := logger.Named("submit")
	log.Info(ctx, "submitting rounds", logger.Int("rounds", len(rounds)), logger.Int("workers", cfg.Workers))

	var submitted, accepted, duplicate, failed atomic.Int64
	var lastReport atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, r := range rounds {
		g.Go(func() error {
			switch submitRound(gctx, client, r) {
			case resultAccepted:
				accepted.Add(1)
			case resultDuplicate:
				duplicate.Add(1)
			default:
				failed.Add(1)
			}
			n := submitted.Add(1)

			now := time.Now().UnixNano()
			if last := lastReport.Load(); now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) && cfg.Verbose {
				log.Info(gctx, "progress",
					logger.Int("submitted", int(n)),
					logger.Int("total", len(rounds)),
					logger.Int("failed", int(failed.Load())),
				)
			}
			return gctx.Err()
		})
	}
	err := g.Wait()

	stats.RoundsSubmitted = int(submitted.Load())
	stats.RoundsAccepted = int(accepted.Load())
	stats.RoundsDuplicate = int(duplicate.Load())
	stats.RoundsFailed = int(failed.Load())

	log.Info(ctx, "round submission completed",
		logger.Int("accepted", stats.RoundsAccepted),
		logger.Int("duplicate", stats.RoundsDuplicate),
		logger.Int("failed", stats.RoundsFailed),
	)
	return err
}

// submitRound posts one round, retrying on backpressure.
func submitRound(ctx context.Context, client *HTTPClient, r model.Round) string {
	payload := newRoundPayload(r)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		var ack submitResponse
		code, err := client.postJSON(ctx, "/rounds", payload, &ack)
		switch {
		case err != nil:
			return resultFailed
		case code == http.StatusAccepted:
			return resultAccepted
		case code == http.StatusOK:
			return resultDuplicate
		case code != http.StatusTooManyRequests:
			return resultFailed
		}
		select {
		case <-ctx.Done():
			return resultFailed
		case <-time.After(backoff << attempt):
		}
	}
	return resultFailed
}
