package roundsim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/handicap/internal/adapters/importer"
	"github.com/okian/handicap/internal/domain/model"
	"github.com/okian/handicap/pkg/logger"
)

const (
	directoryPermission = 0o750
	filePermission      = 0o600
	pollInterval        = 100 * time.Millisecond
	percent             = 100
)

// Run executes a complete simulation: generate or load rounds, submit them,
// wait for ingestion, then verify indexes and the leaderboard.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	logger.Get().Info(ctx, "starting handicap simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("players", cfg.Players),
		logger.Int("roundsPerPlayer", cfg.RoundsPerPlayer),
		logger.Int("workers", cfg.Workers),
		logger.String("input", cfg.InputFile),
	)

	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	rounds, err := loadRounds(ctx, cfg, stats)
	if err != nil {
		return stats, err
	}

	baseline, err := totalRounds(ctx, client)
	if err != nil {
		return stats, err
	}
	if err := submitRounds(ctx, cfg, client, rounds, stats); err != nil {
		return stats, fmt.Errorf("round submission failed: %w", err)
	}
	if err := waitForIngestion(ctx, cfg, client, baseline+stats.RoundsAccepted); err != nil {
		return stats, err
	}

	verifyErr := verifyPlayers(ctx, cfg, client, byPlayer(rounds), stats)
	if err := verifyLeaderboard(ctx, cfg, client, stats); err != nil && verifyErr == nil {
		verifyErr = err
	}

	if cfg.OutputFile != "" {
		if err := saveRounds(cfg.OutputFile, rounds); err != nil {
			logger.Get().Warn(ctx, "failed to save rounds", logger.Error(err))
		} else {
			logger.Get().Info(ctx, "rounds saved", logger.String("file", cfg.OutputFile))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, verifyErr
}

// loadRounds reads rounds from cfg.InputFile, or generates them.
func loadRounds(ctx context.Context, cfg *Config, stats *Stats) ([]model.Round, error) {
	if cfg.InputFile == "" {
		return generateRounds(ctx, cfg, stats), nil
	}
	rounds, err := importer.NewFactory().LoadFile(ctx, cfg.InputFile)
	if err != nil {
		return nil, fmt.Errorf("load rounds: %w", err)
	}
	stats.RoundsGenerated = len(rounds)
	return rounds, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	code, err := client.getJSON(ctx, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	// the service answers with Prometheus metrics
	if code != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", code)
	}
	return nil
}

func totalRounds(ctx context.Context, client *HTTPClient) (int, error) {
	var stats map[string]any
	if _, err := client.getJSON(ctx, "/stats", &stats); err != nil {
		return 0, fmt.Errorf("stats: %w", err)
	}
	n, _ := stats["totalRounds"].(float64)
	return int(n), nil
}

// waitForIngestion polls /stats until the service holds want rounds.
func waitForIngestion(ctx context.Context, cfg *Config, client *HTTPClient, want int) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.SettleTimeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		got, err := totalRounds(ctx, client)
		if err == nil && got >= want {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %d rounds to be ingested (have %d): %w", want, got, ctx.Err())
		case <-ticker.C:
		}
	}
}

// saveRounds writes rounds in the single-player export shape extended with
// player and course, which the importer reads back.
func saveRounds(path string, rounds []model.Round) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	type exported struct {
		ID     string    `json:"id"`
		Player string    `json:"player"`
		Course string    `json:"course"`
		AGS    float64   `json:"ags"`
		CR     float64   `json:"cr"`
		Slope  float64   `json:"slope"`
		PCC    float64   `json:"pcc"`
		Holes  int       `json:"holes"`
		TS     time.Time `json:"ts"`
	}
	out := struct {
		Rounds []exported `json:"rounds"`
	}{Rounds: make([]exported, len(rounds))}
	for i, r := range rounds {
		out.Rounds[i] = exported{
			ID: r.ID, Player: r.PlayerID, Course: r.Course,
			AGS: r.AdjustedGrossScore, CR: r.CourseRating, Slope: r.SlopeRating, PCC: r.PCC,
			Holes: r.HolesPlayed, TS: r.TS,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, filePermission)
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, roundsPerSecond float64
	if stats.RoundsSubmitted > 0 {
		successRate = float64(stats.RoundsAccepted+stats.RoundsDuplicate) / float64(stats.RoundsSubmitted) * percent
	}
	if stats.Duration > 0 {
		roundsPerSecond = float64(stats.RoundsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("roundsGenerated", stats.RoundsGenerated),
		logger.Int("roundsSubmitted", stats.RoundsSubmitted),
		logger.Int("roundsAccepted", stats.RoundsAccepted),
		logger.Int("roundsDuplicate", stats.RoundsDuplicate),
		logger.Int("roundsFailed", stats.RoundsFailed),
		logger.Int("playersVerified", stats.PlayersVerified),
		logger.Int("mismatches", stats.Mismatches),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("roundsPerSecond", roundsPerSecond),
	)
}
