package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/handicap/internal/domain/model"
	"github.com/okian/handicap/pkg/metrics"
)

const defaultMetricsUpdateInterval = 5 * time.Second

// MemoryStore is an in-memory Store. Each player's rounds are kept sorted by
// timestamp; rounds sharing a timestamp keep their arrival order.
type MemoryStore struct {
	mu      sync.RWMutex
	players map[string][]model.Round
	owners  map[string]string // round id -> player id
	rounds  int

	metricsUpdateInterval time.Duration
	stopCh                chan struct{}
	stopOnce              sync.Once
}

// NewMemoryStore creates an empty store and starts its metrics updater,
// which runs until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		players:               make(map[string][]model.Round),
		owners:                make(map[string]string),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopCh:                make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	return nil
}

func (s *MemoryStore) Append(ctx context.Context, r model.Round) error { //nolint:gocritic // hugeParam: rounds are stored by value
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryAppendLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if r.ID == "" || r.PlayerID == "" {
		metrics.RecordErrorByComponent("repository", "invalid_round")
		return ErrInvalidRound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owners[r.ID]; ok {
		metrics.RecordErrorByComponent("repository", "duplicate_round")
		return ErrDuplicateRound
	}

	history := s.players[r.PlayerID]
	// insert after every round at or before r.TS
	i := sort.Search(len(history), func(i int) bool {
		return history[i].TS.After(r.TS)
	})
	history = append(history, model.Round{})
	copy(history[i+1:], history[i:])
	history[i] = r

	s.players[r.PlayerID] = history
	s.owners[r.ID] = r.PlayerID
	s.rounds++
	return nil
}

func (s *MemoryStore) History(ctx context.Context, playerID string) ([]model.Round, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.players[playerID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, ErrNotFound
	}
	out := make([]model.Round, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, playerID, roundID string) (model.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.players[playerID]
	if !ok {
		return model.Round{}, ErrNotFound
	}
	if s.owners[roundID] != playerID {
		return model.Round{}, ErrRoundNotFound
	}
	for i := range history {
		if history[i].ID != roundID {
			continue
		}
		removed := history[i]
		history = append(history[:i], history[i+1:]...)
		if len(history) == 0 {
			delete(s.players, playerID)
		} else {
			s.players[playerID] = history
		}
		delete(s.owners, roundID)
		s.rounds--
		return removed, nil
	}
	return model.Round{}, ErrRoundNotFound
}

func (s *MemoryStore) Players(ctx context.Context) []string {
	s.mu.RLock()
	players := make([]string, 0, len(s.players))
	for p := range s.players {
		players = append(players, p)
	}
	s.mu.RUnlock()

	sort.Strings(players)
	return players
}

func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

func (s *MemoryStore) RoundCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rounds
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(s.metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.updateMetrics(ctx)
		}
	}
}

func (s *MemoryStore) updateMetrics(ctx context.Context) {
	metrics.UpdateTotalPlayers(s.Count(ctx))
	metrics.UpdateTotalRounds(s.RoundCount(ctx))
}
