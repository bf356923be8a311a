// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	roundqueue "github.com/okian/handicap/internal/adapters/mq/queue"
	workerpool "github.com/okian/handicap/internal/adapters/mq/worker"
	"github.com/okian/handicap/internal/adapters/repository"
	"github.com/okian/handicap/internal/domain/dedupe"
	"github.com/okian/handicap/internal/domain/model"
	"github.com/okian/handicap/pkg/logger"
	"github.com/okian/handicap/pkg/metrics"
)

const (
	defaultQueueSize          = 10000
	defaultDedupeSize         = 50000
	defaultTargetSlope        = 120
	stopTimeout               = 30 * time.Second
	componentService          = "service"
	errTypeBackpressure       = "backpressure"
	errTypeInvalidRound       = "invalid_round"
	errTypeImportAppendFailed = "import_append_failed"
)

// Submission outcomes.
const (
	StatusAccepted  = "accepted"
	StatusDuplicate = "duplicate"
)

// SubmitResult reports what happened to one submitted round.
type SubmitResult struct {
	RoundID  string `json:"round_id"`
	PlayerID string `json:"player_id"`
	Status   string `json:"status"`
}

// ImportResult summarises a synchronous bulk load.
type ImportResult struct {
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
}

// Service implements the API dependencies for the handicap system.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	deduper    dedupe.Deduper
	queue      *roundqueue.InMemoryQueue
	workerPool *workerpool.Pool
	ownsStore  bool

	workerCount            int
	queueSize              int
	dedupeSize             int
	defaultTargetSlope     float64
	leaderboardConcurrency int

	started bool
	now     func() time.Time

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:            runtime.NumCPU() * 2,
		queueSize:              defaultQueueSize,
		dedupeSize:             defaultDedupeSize,
		defaultTargetSlope:     defaultTargetSlope,
		leaderboardConcurrency: runtime.NumCPU(),
		now:                    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components. Workers keep running
// after ctx is canceled until Stop drains the queue.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting handicap service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore(ctx)
		s.ownsStore = true
	}
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
		dedupe.WithOnEvict(func(id string) {
			s.logger.Debug(ctx, "round id evicted from dedupe set", logger.String("roundID", id))
		}),
	)
	s.queue = roundqueue.NewInMemoryQueue(
		roundqueue.WithCapacity(s.queueSize),
		roundqueue.WithName("round_queue"),
	)
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s.store)
	// workers outlive ctx so Stop can drain the queue after a signal
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.started = true
	metrics.UpdateWorkerCount(s.workerCount)
	s.logger.Info(ctx, "handicap service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Float64("defaultTargetSlope", s.defaultTargetSlope),
	)
	return nil
}

// Stop drains queued rounds into history and shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping handicap service...")

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	if closer, ok := s.store.(interface{ Close() error }); ok && s.ownsStore {
		_ = closer.Close()
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(ctx, "handicap service stopped")
}

// SubmitRound validates a round and queues it for ingestion. A round whose
// id was already seen is reported as a duplicate and not queued again.
func (s *Service) SubmitRound(ctx context.Context, r model.Round) (SubmitResult, error) { //nolint:gocritic // hugeParam: rounds are values
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return SubmitResult{}, ErrNotStarted
	}
	r, err := s.normalize(r)
	if err != nil {
		metrics.RecordRoundRejected()
		metrics.RecordErrorByComponent(componentService, errTypeInvalidRound)
		return SubmitResult{}, err
	}
	return s.enqueue(ctx, r)
}

// SubmitScorecard expands a multi-player card into rounds and queues each.
// Rounds queued before a backpressure failure stay queued.
func (s *Service) SubmitScorecard(ctx context.Context, card model.Scorecard) ([]SubmitResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	if len(card.Scores) == 0 {
		metrics.RecordRoundRejected()
		return nil, fmt.Errorf("%w: scorecard has no players", ErrInvalidRound)
	}
	if card.Holes < 1 {
		metrics.RecordRoundRejected()
		return nil, fmt.Errorf("%w: scorecard must have at least one hole", ErrInvalidRound)
	}
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	if card.TS.IsZero() {
		card.TS = s.now()
	}

	rounds := card.Rounds()
	results := make([]SubmitResult, 0, len(rounds))
	for _, r := range rounds {
		r, err := s.normalize(r)
		if err != nil {
			metrics.RecordRoundRejected()
			return results, err
		}
		res, err := s.enqueue(ctx, r)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Import appends rounds to history synchronously, bypassing the queue.
// Used to seed history from files.
func (s *Service) Import(ctx context.Context, rounds []model.Round) (ImportResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res ImportResult
	if !s.started {
		return res, ErrNotStarted
	}

	for _, r := range rounds {
		r, err := s.normalize(r)
		if err != nil {
			res.Invalid++
			s.logger.Warn(ctx, "skipping invalid imported round",
				logger.String("roundID", r.ID),
				logger.Error(err),
			)
			continue
		}
		if s.deduper.SeenAndRecord(ctx, r.ID) {
			res.Duplicates++
			continue
		}
		err = s.store.Append(ctx, r)
		switch {
		case err == nil:
			res.Imported++
			metrics.RecordRoundIngested()
		case errors.Is(err, repository.ErrDuplicateRound):
			res.Duplicates++
		default:
			s.deduper.Unrecord(ctx, r.ID)
			metrics.RecordErrorByComponent(componentService, errTypeImportAppendFailed)
			return res, fmt.Errorf("import round %s: %w", r.ID, err)
		}
	}

	s.logger.Info(ctx, "rounds imported",
		logger.Int("imported", res.Imported),
		logger.Int("duplicates", res.Duplicates),
		logger.Int("invalid", res.Invalid),
	)
	return res, nil
}

// DeleteRound removes a round from a player's history. The id may be
// submitted again afterwards.
func (s *Service) DeleteRound(ctx context.Context, playerID, roundID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}
	if _, err := s.store.Delete(ctx, playerID, roundID); err != nil {
		return fmt.Errorf("delete round %s: %w", roundID, err)
	}
	s.deduper.Unrecord(ctx, roundID)
	metrics.RecordRoundDeleted()
	s.logger.Info(ctx, "round deleted",
		logger.String("playerID", playerID),
		logger.String("roundID", roundID),
	)
	return nil
}

// enqueue must be called with s.mu held for reading.
func (s *Service) enqueue(ctx context.Context, r model.Round) (SubmitResult, error) { //nolint:gocritic // hugeParam: rounds are values
	res := SubmitResult{RoundID: r.ID, PlayerID: r.PlayerID}

	if s.deduper.SeenAndRecord(ctx, r.ID) {
		metrics.RecordRoundDuplicate()
		s.logger.Debug(ctx, "duplicate round detected, skipping",
			logger.String("roundID", r.ID),
			logger.String("playerID", r.PlayerID),
		)
		res.Status = StatusDuplicate
		return res, nil
	}

	if !s.queue.Enqueue(ctx, r) {
		s.deduper.Unrecord(ctx, r.ID)
		metrics.RecordErrorByComponent(componentService, errTypeBackpressure)
		return SubmitResult{}, ErrBackpressure
	}

	s.logger.Debug(ctx, "round queued",
		logger.String("roundID", r.ID),
		logger.String("playerID", r.PlayerID),
	)
	res.Status = StatusAccepted
	return res, nil
}

// normalize fills in a missing id and timestamp and rejects rounds that can
// never be scored. Rounds with a non-positive slope are kept: they stay in
// history but yield no differential.
func (s *Service) normalize(r model.Round) (model.Round, error) { //nolint:gocritic // hugeParam: rounds are values
	r.PlayerID = strings.TrimSpace(r.PlayerID)
	if r.PlayerID == "" {
		return r, fmt.Errorf("%w: player id is required", ErrInvalidRound)
	}
	for name, v := range map[string]float64{
		"ags":   r.AdjustedGrossScore,
		"cr":    r.CourseRating,
		"slope": r.SlopeRating,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return r, fmt.Errorf("%w: %s must be a finite number", ErrInvalidRound, name)
		}
	}
	if r.HolesPlayed < 0 {
		return r, fmt.Errorf("%w: holes played must not be negative", ErrInvalidRound)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.TS.IsZero() {
		r.TS = s.now()
	}
	return r, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":            s.started,
		"workerCount":        s.workerCount,
		"queueSize":          s.queueSize,
		"dedupeSize":         s.dedupeSize,
		"defaultTargetSlope": s.defaultTargetSlope,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		players := s.store.Count(ctx)
		rounds := s.store.RoundCount(ctx)
		counters := s.workerPool.Counters()

		stats["queueLength"] = queueLen
		stats["totalPlayers"] = players
		stats["totalRounds"] = rounds
		stats["processed"] = counters.Processed()
		stats["storeDuplicates"] = counters.Duplicates()
		stats["failed"] = counters.Failed()
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalPlayers(players)
		metrics.UpdateTotalRounds(rounds)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}
