package service

import (
	"github.com/okian/handicap/internal/adapters/repository"
	"github.com/okian/handicap/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the round queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the number of remembered round ids. Zero or a
// negative size keeps every id.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithDefaultTargetSlope sets the slope used for Course Handicaps when a
// caller does not name one.
func WithDefaultTargetSlope(slope float64) Option {
	return func(s *Service) {
		if slope > 0 {
			s.defaultTargetSlope = slope
		}
	}
}

// WithLeaderboardConcurrency bounds parallel index computations.
func WithLeaderboardConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.leaderboardConcurrency = n
		}
	}
}

// WithStore replaces the default in-memory history store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
