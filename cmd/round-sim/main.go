package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/handicap/internal/roundsim"
)

// Default configuration constants.
const (
	defaultPlayers  = 200
	defaultRounds   = 25
	defaultTopN     = 50
	defaultWorkers  = 2 // multiplier for runtime.NumCPU()
	defaultTimeout  = 30 * time.Second
	defaultSettle   = time.Minute
	defaultDeadline = 10 * time.Minute
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		players    = flag.Int("players", defaultPlayers, "Number of players to generate")
		rounds     = flag.Int("rounds", defaultRounds, "Rounds per player")
		topN       = flag.Int("top", defaultTopN, "Leaderboard entries to verify")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle     = flag.Duration("settle", defaultSettle, "Time allowed for ingestion")
		seed       = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Seed for round generation")
		inputFile  = flag.String("input", "", "Submit rounds from a .json, .csv or .xlsx file")
		outputFile = flag.String("output", "", "Write submitted rounds as a JSON export")
		logFile    = flag.String("log", "", "Log file (default: round_sim_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		roundsim.ShowHelp()
		return 0
	}

	closer, err := roundsim.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return 1
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultDeadline)
	defer cancel()

	config := &roundsim.Config{
		BaseURL:         *baseURL,
		Players:         *players,
		RoundsPerPlayer: *rounds,
		TopN:            *topN,
		Workers:         *workers,
		Timeout:         *timeout,
		SettleTimeout:   *settle,
		Seed:            *seed,
		InputFile:       *inputFile,
		OutputFile:      *outputFile,
		Verbose:         *verbose,
	}

	if _, err := roundsim.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return 1
	}
	return 0
}
