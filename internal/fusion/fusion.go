// Package fusion pairs two independently produced feature streams into
// temporally aligned events.
//
// The synchronizer owns one bounded buffer per stream and runs a periodic
// reconciliation step over the buffer heads: a head pair within tolerance
// is popped and emitted as one synced event; a head older than the other
// stream's head by more than the tolerance is discarded, at most one per
// step. Producers push without blocking and without coordination; the
// reconciliation task is the only synchronization point between streams.
package fusion

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/attune/internal/domain/buffer"
	"github.com/okian/attune/internal/domain/model"
	"github.com/okian/attune/pkg/logger"
	"github.com/okian/attune/pkg/metrics"
)

// DefaultTolerance is the match window applied when no option overrides it.
// The reconciliation period is always tolerance/2.
const DefaultTolerance = 100 * time.Millisecond

// EventHandler consumes synced events. It is invoked synchronously from
// the reconciliation step, after both heads have been popped; a panic in
// the handler is recovered and does not stop the periodic task.
type EventHandler func(model.SyncedEvent)

// outcome classifies one reconciliation step. Exactly one outcome occurs
// per step.
type outcome int

const (
	outcomeIdle outcome = iota
	outcomeMatch
	outcomeStaleVisual
	outcomeStaleAudio
)

// Synchronizer reconciles a visual and an audio sample stream. Construct
// with New; the zero value is not usable.
type Synchronizer struct {
	visual *buffer.Ring[model.VisualSample]
	audio  *buffer.Ring[model.AudioSample]

	tolerance time.Duration
	capacity  int
	handler   EventHandler
	log       logger.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	matched     atomic.Uint64
	staleVisual atomic.Uint64
	staleAudio  atomic.Uint64
	faults      atomic.Uint64
}

// New creates a stopped synchronizer that will deliver matched pairs to
// handler. It fails fast on a nil handler, a non-positive tolerance or a
// non-positive buffer capacity.
func New(handler EventHandler, opts ...Option) (*Synchronizer, error) {
	s := &Synchronizer{
		tolerance: DefaultTolerance,
		capacity:  buffer.DefaultCapacity,
		handler:   handler,
		log:       logger.Named("fusion"),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.handler == nil {
		return nil, ErrNilHandler
	}
	if s.tolerance <= 0 {
		return nil, ErrInvalidTolerance
	}
	if s.capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	s.visual = buffer.NewRing(buffer.WithCapacity[model.VisualSample](s.capacity))
	s.audio = buffer.NewRing(buffer.WithCapacity[model.AudioSample](s.capacity))
	return s, nil
}

// PushVisual accepts one visual sample. Never blocks; at capacity the
// oldest pending visual sample is evicted. Safe while Stopped.
func (s *Synchronizer) PushVisual(sample model.VisualSample) {
	if s.visual.Push(sample) {
		metrics.RecordBufferEviction(metrics.StreamVisual)
	}
	metrics.RecordSampleIngested(metrics.StreamVisual)
	metrics.UpdateBufferSize(metrics.StreamVisual, s.visual.Len())
}

// PushAudio accepts one audio sample under the same contract as PushVisual.
func (s *Synchronizer) PushAudio(sample model.AudioSample) {
	if s.audio.Push(sample) {
		metrics.RecordBufferEviction(metrics.StreamAudio)
	}
	metrics.RecordSampleIngested(metrics.StreamAudio)
	metrics.UpdateBufferSize(metrics.StreamAudio, s.audio.Len())
}

// Start launches the periodic reconciliation task. Calling Start while
// Running is a no-op. Cancelling ctx halts the task without clearing the
// buffers; Running then reports false and Start accepts a fresh context.
// Stop remains the way to reset the buffers.
func (s *Synchronizer) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		select {
		case <-s.done:
			// The previous task exited on context cancellation; fall
			// through and launch a fresh one.
		default:
			return
		}
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true

	go s.run(ctx, s.stop, s.done)
	s.log.Info(ctx, "synchronizer started",
		logger.Int64("tolerance_ms", s.tolerance.Milliseconds()),
		logger.Int("buffer_capacity", s.capacity),
	)
}

// Stop cancels the periodic task, waits for any in-flight reconciliation
// step to finish, then clears both buffers. Idempotent; safe to call
// concurrently with a running step.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	close(s.stop)
	// The clear below must happen after the task has fully halted so a
	// step never observes a half-cleared buffer.
	<-s.done

	s.visual.Clear()
	s.audio.Clear()
	metrics.UpdateBufferSize(metrics.StreamVisual, 0)
	metrics.UpdateBufferSize(metrics.StreamAudio, 0)
	s.running = false
	s.log.Info(context.Background(), "synchronizer stopped")
}

// Running reports whether the periodic task is active, including the case
// where the Start context was cancelled and the task exited on its own.
func (s *Synchronizer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *Synchronizer) run(ctx context.Context, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.tolerance / 2)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reconcile(ctx)
		}
	}
}

// reconcile executes one matching/discard decision over the current buffer
// heads. Head-only matching assumes each producer delivers samples in
// timestamp order; an out-of-order sample can cause a younger head to be
// discarded as stale, which the per-stream discard counters surface.
func (s *Synchronizer) reconcile(ctx context.Context) outcome {
	v, ok := s.visual.PeekOldest()
	if !ok {
		return outcomeIdle
	}
	a, ok := s.audio.PeekOldest()
	if !ok {
		return outcomeIdle
	}

	toleranceMS := s.tolerance.Milliseconds()
	diff := v.TS - a.TS
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff <= toleranceMS:
		s.visual.PopOldest()
		s.audio.PopOldest()
		metrics.UpdateBufferSize(metrics.StreamVisual, s.visual.Len())
		metrics.UpdateBufferSize(metrics.StreamAudio, s.audio.Len())

		// Integer mean truncates toward zero; an odd timestamp sum lands
		// on the earlier half-millisecond.
		ev := model.SyncedEvent{
			TS:     (v.TS + a.TS) / 2,
			Visual: v,
			Audio:  a,
		}
		s.matched.Add(1)
		metrics.RecordSyncMatch()
		metrics.RecordMatchGap(float64(diff))
		s.emit(ctx, ev)
		return outcomeMatch

	case v.TS < a.TS-toleranceMS:
		s.visual.PopOldest()
		metrics.UpdateBufferSize(metrics.StreamVisual, s.visual.Len())
		s.staleVisual.Add(1)
		metrics.RecordStaleDiscard(metrics.StreamVisual)
		s.log.Debug(ctx, "stale visual head discarded",
			logger.Int64("visual_ts", v.TS),
			logger.Int64("audio_ts", a.TS),
		)
		return outcomeStaleVisual

	default:
		s.audio.PopOldest()
		metrics.UpdateBufferSize(metrics.StreamAudio, s.audio.Len())
		s.staleAudio.Add(1)
		metrics.RecordStaleDiscard(metrics.StreamAudio)
		s.log.Debug(ctx, "stale audio head discarded",
			logger.Int64("visual_ts", v.TS),
			logger.Int64("audio_ts", a.TS),
		)
		return outcomeStaleAudio
	}
}

// emit delivers ev to the handler, isolating consumer faults from the
// scheduling loop. The pops have already committed, so a panicking
// consumer cannot cause a duplicate emission.
func (s *Synchronizer) emit(ctx context.Context, ev model.SyncedEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.faults.Add(1)
			metrics.RecordConsumerFault()
			s.log.Error(ctx, "event consumer panicked",
				logger.Any("panic", r),
				logger.Int64("event_ts", ev.TS),
			)
		}
	}()
	s.handler(ev)
}

// Stats is a snapshot of synchronizer counters.
type Stats struct {
	Running         bool   `json:"running"`
	Matched         uint64 `json:"matched"`
	StaleVisual     uint64 `json:"stale_visual"`
	StaleAudio      uint64 `json:"stale_audio"`
	ConsumerFaults  uint64 `json:"consumer_faults"`
	VisualPending   int    `json:"visual_pending"`
	AudioPending    int    `json:"audio_pending"`
	VisualEvictions uint64 `json:"visual_evictions"`
	AudioEvictions  uint64 `json:"audio_evictions"`
}

// Stats returns a snapshot of the synchronizer's counters.
func (s *Synchronizer) Stats() Stats {
	return Stats{
		Running:         s.Running(),
		Matched:         s.matched.Load(),
		StaleVisual:     s.staleVisual.Load(),
		StaleAudio:      s.staleAudio.Load(),
		ConsumerFaults:  s.faults.Load(),
		VisualPending:   s.visual.Len(),
		AudioPending:    s.audio.Len(),
		VisualEvictions: s.visual.Evictions(),
		AudioEvictions:  s.audio.Evictions(),
	}
}
