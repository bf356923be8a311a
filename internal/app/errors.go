package service

import "errors"

// Sentinel kinds for service errors. Store errors such as
// repository.ErrNotFound are returned wrapped, never replaced.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("round queue is full")
	ErrInvalidRound = errors.New("invalid round")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrInvalidHoles = errors.New("holes must be 9 or 18")
)
