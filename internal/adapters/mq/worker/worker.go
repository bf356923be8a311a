// Package worker drains the round queue into player history.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/handicap/internal/adapters/mq/queue"
	"github.com/okian/handicap/internal/adapters/repository"
	"github.com/okian/handicap/internal/domain/handicap"
	"github.com/okian/handicap/pkg/logger"
	"github.com/okian/handicap/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Round is what workers read off the queue.
type Round = queue.Round

// Appender stores a round in its player's history.
type Appender interface {
	Append(ctx context.Context, r Round) error
}

// Queue defines how workers receive rounds.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Round
}

// Worker processes rounds using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining the queue.
	Shutdown(ctx context.Context) error
}

// Counters aggregates processing outcomes across workers.
type Counters struct {
	processed  atomic.Int64
	duplicates atomic.Int64
	failed     atomic.Int64
}

// Processed returns the number of rounds appended to history.
func (c *Counters) Processed() int64 { return c.processed.Load() }

// Duplicates returns the number of rounds the store already held.
func (c *Counters) Duplicates() int64 { return c.duplicates.Load() }

// Failed returns the number of rounds that could not be stored.
func (c *Counters) Failed() int64 { return c.failed.Load() }

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	appender Appender
	counters *Counters
	name     string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, appender Appender, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		appender: appender,
		counters: &Counters{},
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Counters returns the worker's outcome counters.
func (w *InMemoryWorker) Counters() *Counters { return w.counters }

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	rounds := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case r, ok := <-rounds:
			if !ok {
				return
			}
			if err := w.processRound(ctx, r); err != nil {
				w.logger.Error(ctx, "error processing round", logger.Error(err))
			}
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processRound derives the round's differential for observability and
// appends the raw round to history.
func (w *InMemoryWorker) processRound(ctx context.Context, r Round) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if d, ok := handicap.RoundDifferential(r); ok {
		metrics.RecordDifferential(d)
	} else {
		metrics.RecordDifferentialDiscarded()
		w.logger.Warn(ctx, "round has no valid differential",
			logger.String("roundID", r.ID),
			logger.String("playerID", r.PlayerID),
			logger.Float64("slope", r.SlopeRating),
		)
	}

	err := w.appender.Append(ctx, r)
	switch {
	case err == nil:
		w.counters.processed.Add(1)
		metrics.RecordRoundIngested()
		return nil
	case errors.Is(err, repository.ErrDuplicateRound):
		w.counters.duplicates.Add(1)
		metrics.RecordRoundDuplicate()
		w.logger.Debug(ctx, "round already stored", logger.String("roundID", r.ID))
		return nil
	default:
		w.counters.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "append_failed")
		return fmt.Errorf("append round %s: %w", r.ID, err)
	}
}

// Pool manages multiple workers sharing one set of counters.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	counters *Counters
	logger   logger.Logger
}

// NewPool creates a new worker pool. A non-positive count defaults to twice
// the number of CPUs.
func NewPool(workerCount int, q Queue, appender Appender) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		counters: &Counters{},
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, appender,
			WithName("worker-"+strconv.Itoa(i)),
			withCounters(pool.counters),
		)
	}

	metrics.UpdateWorkerActiveCount(0)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Counters returns the pool-wide outcome counters.
func (p *Pool) Counters() *Counters { return p.counters }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
}

// Stop stops all workers without draining the queue.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker stop timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerActiveCount(0)
}

// Shutdown closes the queue and waits for the workers to drain it. Workers
// still running when ctx expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut {
		p.Stop()
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}

	metrics.UpdateWorkerActiveCount(0)
	return nil
}
