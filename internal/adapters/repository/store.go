// Package repository defines the round history store interface and errors.
package repository

import (
	"context"

	"github.com/okian/handicap/internal/domain/model"
)

// Store provides read/write access to players' round histories.
//
// Stores hold raw rounds only. Differentials and indexes are derived on read
// so a change to history is reflected the next time it is queried.
type Store interface {
	// Append adds a round to its player's history, keeping the history in
	// ascending time order. Returns ErrDuplicateRound if the id is stored.
	Append(ctx context.Context, r model.Round) error

	// History returns a copy of the player's rounds, oldest first.
	// Returns ErrNotFound if the player is unknown.
	History(ctx context.Context, playerID string) ([]model.Round, error)

	// Delete removes one round and returns it.
	// Returns ErrNotFound or ErrRoundNotFound.
	Delete(ctx context.Context, playerID, roundID string) (model.Round, error)

	// Players returns every player with at least one round, in name order.
	Players(ctx context.Context) []string

	// Count returns the number of players tracked.
	Count(ctx context.Context) int

	// RoundCount returns the number of rounds stored across all players.
	RoundCount(ctx context.Context) int
}
