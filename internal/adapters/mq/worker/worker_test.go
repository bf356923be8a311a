package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/handicap/internal/adapters/mq/queue"
	worker "github.com/okian/handicap/internal/adapters/mq/worker"
	"github.com/okian/handicap/internal/adapters/repository"
	model "github.com/okian/handicap/internal/domain/model"
	logging "github.com/okian/handicap/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	ch        chan queue.Round
	closeOnce sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan queue.Round, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Round { return mq.ch }

func (mq *mockQueue) Close() error {
	mq.closeOnce.Do(func() { close(mq.ch) })
	return nil
}

type mockAppender struct {
	mu     sync.Mutex
	rounds map[string]model.Round
	errs   map[string]error
}

func newMockAppender() *mockAppender {
	return &mockAppender{rounds: map[string]model.Round{}, errs: map[string]error{}}
}

func (m *mockAppender) Append(ctx context.Context, r model.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errs[r.ID]; ok {
		return err
	}
	m.rounds[r.ID] = r
	return nil
}

func (m *mockAppender) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rounds[id]
	return ok
}

func (m *mockAppender) setError(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[id] = err
}

func testRound(id string, slope float64) model.Round {
	return model.Round{
		ID:                 id,
		PlayerID:           "alice",
		AdjustedGrossScore: 88,
		CourseRating:       71,
		SlopeRating:        slope,
		HolesPlayed:        18,
		TS:                 time.Now(),
	}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running InMemoryWorker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		appender := newMockAppender()
		w := worker.NewInMemoryWorker(q, appender, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a valid round arrives", func() {
			q.ch <- testRound("r1", 113)

			convey.Convey("Then it is appended", func() {
				convey.So(waitFor(func() bool { return appender.has("r1") }), convey.ShouldBeTrue)
				convey.So(w.Counters().Processed(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a round has an invalid slope", func() {
			q.ch <- testRound("r2", 0)

			convey.Convey("Then it is still kept in history", func() {
				convey.So(waitFor(func() bool { return appender.has("r2") }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the store already has the round", func() {
			appender.setError("r3", repository.ErrDuplicateRound)
			q.ch <- testRound("r3", 113)

			convey.Convey("Then it is counted as a duplicate", func() {
				convey.So(waitFor(func() bool { return w.Counters().Duplicates() == 1 }), convey.ShouldBeTrue)
				convey.So(w.Counters().Failed(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the store fails", func() {
			appender.setError("r4", errors.New("disk on fire"))
			q.ch <- testRound("r4", 113)

			convey.Convey("Then it is counted as failed and the worker keeps going", func() {
				convey.So(waitFor(func() bool { return w.Counters().Failed() == 1 }), convey.ShouldBeTrue)
				q.ch <- testRound("r5", 113)
				convey.So(waitFor(func() bool { return appender.has("r5") }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When shut down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then Run returns", func() {
				convey.So(err, convey.ShouldBeNil)
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					t.Fatal("worker did not stop")
				}
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a worker pool over a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(500))
		appender := newMockAppender()
		pool := worker.NewPool(4, q, appender)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When many rounds are queued and the pool shuts down", func() {
			const n = 200
			for i := 0; i < n; i++ {
				convey.So(q.Enqueue(ctx, testRound(fmt.Sprintf("r%d", i), 113)), convey.ShouldBeTrue)
			}
			err := pool.Shutdown(context.Background())

			convey.Convey("Then every queued round is drained first", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(pool.Counters().Processed(), convey.ShouldEqual, n)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When created with no worker count", func() {
			p := worker.NewPool(0, q, appender)

			convey.Convey("Then it defaults to a CPU based size", func() {
				convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})
	})
}
