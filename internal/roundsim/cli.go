package roundsim

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/handicap/pkg/logger"
)

// SetupLogging sends log output to stdout and to logFile. An empty logFile
// gets a timestamped name. The returned closer closes the file.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if logFile == "" {
		logFile = "round_sim_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file)), logger.WithLevel(level)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Handicap Round Simulator
========================

Generates players and rounds, submits them to a running handicap service,
and checks every returned Handicap Index against a local computation.

Usage:
  round-sim [options]

Options:
  -url string        Base URL of the service (default "http://localhost:9080")
  -players int       Number of players to generate (default 200)
  -rounds int        Rounds per player (default 25)
  -top int           Leaderboard entries to verify (default 50)
  -workers int       Concurrent submitters (default CPU cores * 2)
  -timeout duration  HTTP request timeout (default 30s)
  -settle duration   Time allowed for ingestion (default 1m)
  -seed uint         Seed for round generation (default: current time)
  -input string      Submit rounds from a .json, .csv or .xlsx file instead
  -output string     Write the submitted rounds as a JSON export
  -log string        Log file (default: round_sim_TIMESTAMP.log)
  -verbose           Log progress and every mismatch
  -help              Show this help message

Examples:
  round-sim -players 1000 -rounds 40 -workers 32
  round-sim -input history.json -url http://localhost:8080
`)
}
