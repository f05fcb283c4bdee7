package app

import (
	"time"

	"github.com/okian/attune/internal/domain/scoring"
	"github.com/okian/attune/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTolerance sets the synchronizer match window.
func WithTolerance(tolerance time.Duration) Option {
	return func(s *Service) {
		s.tolerance = tolerance
	}
}

// WithBufferCapacity sets the capacity of both stream buffers.
func WithBufferCapacity(capacity int) Option {
	return func(s *Service) {
		s.capacity = capacity
	}
}

// WithDedupeSize bounds the ingest idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithScoringOptions forwards threshold options to the state scorer.
func WithScoringOptions(opts ...scoring.Option) Option {
	return func(s *Service) {
		s.scoringOpts = append(s.scoringOpts, opts...)
	}
}

// WithEventListener registers a consumer for every synced event.
// Listeners run synchronously inside the reconciliation step, before
// scoring, in registration order.
func WithEventListener(fn EventListener) Option {
	return func(s *Service) {
		if fn != nil {
			s.eventListeners = append(s.eventListeners, fn)
		}
	}
}

// WithStateListener registers a consumer for every derived state.
// Listeners run synchronously after scoring, in registration order.
func WithStateListener(fn StateListener) Option {
	return func(s *Service) {
		if fn != nil {
			s.stateListeners = append(s.stateListeners, fn)
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}
