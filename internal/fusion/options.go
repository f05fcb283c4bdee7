package fusion

import (
	"time"

	"github.com/okian/attune/pkg/logger"
)

// Option applies a configuration option to the Synchronizer.
type Option func(*Synchronizer)

// WithTolerance sets the match window. The reconciliation period is
// derived as tolerance/2. Values are validated by New.
func WithTolerance(tolerance time.Duration) Option {
	return func(s *Synchronizer) {
		s.tolerance = tolerance
	}
}

// WithBufferCapacity sets the capacity of both stream buffers. Values are
// validated by New.
func WithBufferCapacity(capacity int) Option {
	return func(s *Synchronizer) {
		s.capacity = capacity
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Synchronizer) {
		if log != nil {
			s.log = log
		}
	}
}
