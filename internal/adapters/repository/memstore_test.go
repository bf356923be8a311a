package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/handicap/internal/domain/model"
)

var day0 = time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)

func round(id, player string, day int) model.Round {
	return model.Round{
		ID:                 id,
		PlayerID:           player,
		AdjustedGrossScore: 90,
		CourseRating:       72,
		SlopeRating:        113,
		HolesPlayed:        18,
		TS:                 day0.AddDate(0, 0, day),
	}
}

func ids(rounds []model.Round) []string {
	out := make([]string, len(rounds))
	for i, r := range rounds {
		out[i] = r.ID
	}
	return out
}

func TestMemoryStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)
	defer store.Close()

	if c := store.Count(ctx); c != 0 {
		t.Errorf("expected count 0, got %d", c)
	}
	if _, err := store.History(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := store.Append(ctx, round("r1", "alice", 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Append(ctx, round("r2", "bob", 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c := store.Count(ctx); c != 2 {
		t.Errorf("expected count 2, got %d", c)
	}
	if c := store.RoundCount(ctx); c != 2 {
		t.Errorf("expected round count 2, got %d", c)
	}
	if p := store.Players(ctx); fmt.Sprint(p) != "[alice bob]" {
		t.Errorf("expected [alice bob], got %v", p)
	}
}

func TestMemoryStore_Ordering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)
	defer store.Close()

	for _, r := range []model.Round{
		round("late", "alice", 5),
		round("early", "alice", 1),
		round("mid-a", "alice", 3),
		round("mid-b", "alice", 3),
	} {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	history, err := store.History(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := fmt.Sprint(ids(history)); got != "[early mid-a mid-b late]" {
		t.Errorf("unexpected order %s", got)
	}

	// the returned slice is a copy
	history[0].ID = "changed"
	again, _ := store.History(ctx, "alice")
	if again[0].ID != "early" {
		t.Errorf("history was mutated through the returned slice")
	}
}

func TestMemoryStore_Duplicates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)
	defer store.Close()

	if err := store.Append(ctx, round("r1", "alice", 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Append(ctx, round("r1", "bob", 1)); !errors.Is(err, ErrDuplicateRound) {
		t.Errorf("expected ErrDuplicateRound, got %v", err)
	}
	if err := store.Append(ctx, round("", "alice", 1)); !errors.Is(err, ErrInvalidRound) {
		t.Errorf("expected ErrInvalidRound, got %v", err)
	}
	if err := store.Append(ctx, round("r9", "", 1)); !errors.Is(err, ErrInvalidRound) {
		t.Errorf("expected ErrInvalidRound, got %v", err)
	}
	if c := store.RoundCount(ctx); c != 1 {
		t.Errorf("expected round count 1, got %d", c)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)
	defer store.Close()

	_ = store.Append(ctx, round("r1", "alice", 0))
	_ = store.Append(ctx, round("r2", "alice", 1))
	_ = store.Append(ctx, round("b1", "bob", 0))

	if _, err := store.Delete(ctx, "carol", "r1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Delete(ctx, "alice", "b1"); !errors.Is(err, ErrRoundNotFound) {
		t.Errorf("expected ErrRoundNotFound, got %v", err)
	}

	removed, err := store.Delete(ctx, "alice", "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed.ID != "r1" {
		t.Errorf("expected r1 removed, got %s", removed.ID)
	}
	if c := store.RoundCount(ctx); c != 2 {
		t.Errorf("expected round count 2, got %d", c)
	}

	// the id can be reused once deleted
	if err := store.Append(ctx, round("r1", "alice", 2)); err != nil {
		t.Errorf("expected re-append to succeed, got %v", err)
	}

	// removing a player's last round forgets the player
	if _, err := store.Delete(ctx, "bob", "b1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.History(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if c := store.Count(ctx); c != 1 {
		t.Errorf("expected count 1, got %d", c)
	}
}

func TestMemoryStore_Concurrency(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx, WithMetricsUpdateInterval(time.Millisecond))
	defer store.Close()

	const players = 8
	const perPlayer = 50

	var wg sync.WaitGroup
	for p := 0; p < players; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			player := fmt.Sprintf("p%d", p)
			for i := perPlayer - 1; i >= 0; i-- {
				if err := store.Append(ctx, round(fmt.Sprintf("%s-%d", player, i), player, i)); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				_, _ = store.History(ctx, player)
			}
		}(p)
	}
	wg.Wait()

	if c := store.RoundCount(ctx); c != players*perPlayer {
		t.Errorf("expected %d rounds, got %d", players*perPlayer, c)
	}
	history, _ := store.History(ctx, "p3")
	for i := 1; i < len(history); i++ {
		if history[i].TS.Before(history[i-1].TS) {
			t.Fatalf("history out of order at %d", i)
		}
	}
}
