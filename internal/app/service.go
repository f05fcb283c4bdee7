// Package app wires the fusion pipeline: ingest pushes, the synchronizer,
// the state scorer, and delivery to registered consumers.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/okian/attune/internal/domain/dedupe"
	"github.com/okian/attune/internal/domain/model"
	"github.com/okian/attune/internal/domain/scoring"
	"github.com/okian/attune/internal/fusion"
	"github.com/okian/attune/pkg/logger"
	"github.com/okian/attune/pkg/metrics"
)

// EventListener consumes every synced event.
type EventListener func(model.SyncedEvent)

// StateListener consumes every derived cognitive state.
type StateListener func(model.CognitiveState)

// Service owns the pipeline components and their lifecycle. One instance
// per process; no package-level mutable state.
type Service struct {
	syncer  *fusion.Synchronizer
	scorer  *scoring.Scorer
	deduper dedupe.Deduper

	eventListeners []EventListener
	stateListeners []StateListener

	// mu guards the lifecycle; snapMu guards the latest snapshot. They
	// are separate because Stop holds mu while waiting for an in-flight
	// reconciliation step, and that step updates the snapshot.
	mu      sync.Mutex
	started bool

	snapMu      sync.RWMutex
	latestEvent *model.SyncedEvent
	latestState *model.CognitiveState

	// Construction-time settings.
	tolerance   time.Duration
	capacity    int
	dedupeSize  int
	scoringOpts []scoring.Option
	log         logger.Logger
}

// New constructs the service and its pipeline. Fails fast on invalid
// tolerance or capacity.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		tolerance:  fusion.DefaultTolerance,
		capacity:   5,
		dedupeSize: 10_000,
		log:        logger.Named("app"),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.scorer = scoring.New(s.scoringOpts...)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))

	syncer, err := fusion.New(s.handleEvent,
		fusion.WithTolerance(s.tolerance),
		fusion.WithBufferCapacity(s.capacity),
		fusion.WithLogger(s.log.Named("fusion")),
	)
	if err != nil {
		return nil, err
	}
	s.syncer = syncer
	return s, nil
}

// Start launches the periodic reconciliation task. Idempotent.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.syncer.Start(ctx)
	s.started = true
	s.log.Info(ctx, "fusion service started",
		logger.Int64("tolerance_ms", s.tolerance.Milliseconds()),
		logger.Int("buffer_capacity", s.capacity),
	)
}

// Stop halts reconciliation and clears both stream buffers. Idempotent;
// blocks until any in-flight reconciliation step has finished.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.syncer.Stop()
	s.started = false
	s.log.Info(context.Background(), "fusion service stopped")
}

// PushVisual accepts one visual sample from the producer. Never blocks.
func (s *Service) PushVisual(sample model.VisualSample) {
	s.syncer.PushVisual(sample)
}

// PushAudio accepts one audio sample from the producer. Never blocks.
func (s *Service) PushAudio(sample model.AudioSample) {
	s.syncer.PushAudio(sample)
}

// handleEvent is the synchronizer's emit target: event listeners first,
// then scoring, then state listeners, all synchronous within the
// reconciliation step.
func (s *Service) handleEvent(ev model.SyncedEvent) {
	for _, fn := range s.eventListeners {
		fn(ev)
	}

	state := s.scorer.Score(ev)
	metrics.RecordStateScored(string(state.Engagement), string(state.Arousal))
	metrics.UpdateStateConfidence(state.Confidence)

	s.snapMu.Lock()
	s.latestEvent = &ev
	s.latestState = &state
	s.snapMu.Unlock()

	for _, fn := range s.stateListeners {
		fn(state)
	}
}

// SeenAndRecord tracks ingest idempotency; see dedupe.Deduper.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord reverses SeenAndRecord after a failed push.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// LatestState returns the most recently derived cognitive state, or false
// when no pair has matched yet.
func (s *Service) LatestState() (model.CognitiveState, bool) {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()

	if s.latestState == nil {
		return model.CognitiveState{}, false
	}
	return *s.latestState, true
}

// LatestEvent returns the most recently emitted synced event, or false
// when no pair has matched yet.
func (s *Service) LatestEvent() (model.SyncedEvent, bool) {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()

	if s.latestEvent == nil {
		return model.SyncedEvent{}, false
	}
	return *s.latestEvent, true
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	st := s.syncer.Stats()
	return map[string]any{
		"started":          started,
		"tolerance_ms":     s.tolerance.Milliseconds(),
		"buffer_capacity":  s.capacity,
		"matched":          st.Matched,
		"stale_visual":     st.StaleVisual,
		"stale_audio":      st.StaleAudio,
		"consumer_faults":  st.ConsumerFaults,
		"visual_pending":   st.VisualPending,
		"audio_pending":    st.AudioPending,
		"visual_evictions": st.VisualEvictions,
		"audio_evictions":  st.AudioEvictions,
		"dedupe_size":      s.deduper.Size(),
	}
}
