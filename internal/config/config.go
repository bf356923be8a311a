// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and environment variables on top of New.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects log output: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory round queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of history writers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the set of remembered round ids; <= 0 is unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// DefaultTargetSlope is used for Course Handicaps when a request names
	// no slope.
	DefaultTargetSlope float64 `koanf:"default_target_slope"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// LeaderboardConcurrency bounds parallel index computations per
	// leaderboard request.
	LeaderboardConcurrency int `koanf:"leaderboard_concurrency"`

	// SeedFile optionally names a .json, .csv or .xlsx history file loaded
	// at startup.
	SeedFile string `koanf:"seed_file"`
}

// New creates a Config with defaults. Context is accepted first to match the
// project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		QueueSize:              10_000,
		WorkerCount:            runtime.NumCPU() * 2,
		DedupeSize:             500_000,
		DefaultTargetSlope:     120,
		MaxLeaderboardLimit:    100,
		LeaderboardConcurrency: runtime.NumCPU(),
	}
}
