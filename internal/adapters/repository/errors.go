package repository

import "errors"

// Sentinel kinds for history store errors.
var (
	ErrNotFound       = errors.New("player not found")
	ErrRoundNotFound  = errors.New("round not found")
	ErrDuplicateRound = errors.New("duplicate round id")
	ErrInvalidRound   = errors.New("round requires an id and a player id")
)
