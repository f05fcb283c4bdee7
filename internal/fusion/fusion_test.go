package fusion

import (
	"context"
	"testing"
	"time"

	"github.com/okian/attune/internal/domain/model"
)

func newSynchronizer(t *testing.T, handler EventHandler, opts ...Option) *Synchronizer {
	t.Helper()
	if handler == nil {
		handler = func(model.SyncedEvent) {}
	}
	s, err := New(handler, opts...)
	if err != nil {
		t.Fatalf("new synchronizer: %v", err)
	}
	return s
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil); err != ErrNilHandler {
		t.Errorf("nil handler: err = %v, want ErrNilHandler", err)
	}
	if _, err := New(func(model.SyncedEvent) {}, WithTolerance(0)); err != ErrInvalidTolerance {
		t.Errorf("zero tolerance: err = %v, want ErrInvalidTolerance", err)
	}
	if _, err := New(func(model.SyncedEvent) {}, WithTolerance(-time.Second)); err != ErrInvalidTolerance {
		t.Errorf("negative tolerance: err = %v, want ErrInvalidTolerance", err)
	}
	if _, err := New(func(model.SyncedEvent) {}, WithBufferCapacity(0)); err != ErrInvalidCapacity {
		t.Errorf("zero capacity: err = %v, want ErrInvalidCapacity", err)
	}
}

func TestReconcileMatchWithinTolerance(t *testing.T) {
	var got []model.SyncedEvent
	s := newSynchronizer(t, func(ev model.SyncedEvent) { got = append(got, ev) },
		WithTolerance(100*time.Millisecond))

	s.PushVisual(model.VisualSample{TS: 0})
	s.PushAudio(model.AudioSample{TS: 60})

	if out := s.reconcile(context.Background()); out != outcomeMatch {
		t.Fatalf("outcome = %v, want match", out)
	}
	if len(got) != 1 {
		t.Fatalf("emitted %d events, want 1", len(got))
	}
	if got[0].TS != 30 {
		t.Errorf("event TS = %d, want 30", got[0].TS)
	}
	if got[0].Visual.TS != 0 || got[0].Audio.TS != 60 {
		t.Errorf("event sides = (%d, %d), want (0, 60)", got[0].Visual.TS, got[0].Audio.TS)
	}

	// Both heads are gone: a repeated step on unchanged buffers is idle
	// and never re-emits the pair.
	if out := s.reconcile(context.Background()); out != outcomeIdle {
		t.Errorf("repeat outcome = %v, want idle", out)
	}
	if len(got) != 1 {
		t.Errorf("repeat step re-emitted; %d events", len(got))
	}
	if s.visual.Len() != 0 || s.audio.Len() != 0 {
		t.Errorf("buffers not drained: visual=%d audio=%d", s.visual.Len(), s.audio.Len())
	}
}

func TestReconcileTruncatesMeanTimestamp(t *testing.T) {
	var got model.SyncedEvent
	s := newSynchronizer(t, func(ev model.SyncedEvent) { got = ev })

	s.PushVisual(model.VisualSample{TS: 10})
	s.PushAudio(model.AudioSample{TS: 15})
	s.reconcile(context.Background())

	// (10+15)/2 truncates to 12.
	if got.TS != 12 {
		t.Errorf("event TS = %d, want 12", got.TS)
	}
}

func TestReconcileDiscardsStaleVisual(t *testing.T) {
	s := newSynchronizer(t, nil, WithTolerance(100*time.Millisecond))

	s.PushVisual(model.VisualSample{TS: 0})
	s.PushAudio(model.AudioSample{TS: 500})

	if out := s.reconcile(context.Background()); out != outcomeStaleVisual {
		t.Fatalf("outcome = %v, want stale visual", out)
	}
	if s.visual.Len() != 0 {
		t.Errorf("visual pending = %d, want 0", s.visual.Len())
	}
	// The audio head is untouched.
	if a, ok := s.audio.PeekOldest(); !ok || a.TS != 500 {
		t.Errorf("audio head = %v (ok=%v), want TS 500", a, ok)
	}
}

func TestReconcileDiscardsStaleAudio(t *testing.T) {
	s := newSynchronizer(t, nil, WithTolerance(100*time.Millisecond))

	s.PushVisual(model.VisualSample{TS: 500})
	s.PushAudio(model.AudioSample{TS: 0})

	if out := s.reconcile(context.Background()); out != outcomeStaleAudio {
		t.Fatalf("outcome = %v, want stale audio", out)
	}
	if v, ok := s.visual.PeekOldest(); !ok || v.TS != 500 {
		t.Errorf("visual head = %v (ok=%v), want TS 500", v, ok)
	}
}

func TestReconcileDiscardsOneHeadPerStep(t *testing.T) {
	s := newSynchronizer(t, nil, WithTolerance(100*time.Millisecond))

	// Three stale visual samples behind one audio sample: draining them
	// takes three steps, one discard each.
	s.PushVisual(model.VisualSample{TS: 0})
	s.PushVisual(model.VisualSample{TS: 10})
	s.PushVisual(model.VisualSample{TS: 20})
	s.PushAudio(model.AudioSample{TS: 1000})

	for i := 0; i < 3; i++ {
		if out := s.reconcile(context.Background()); out != outcomeStaleVisual {
			t.Fatalf("step %d outcome = %v, want stale visual", i, out)
		}
		if want := 2 - i; s.visual.Len() != want {
			t.Fatalf("step %d visual pending = %d, want %d", i, s.visual.Len(), want)
		}
	}
	if out := s.reconcile(context.Background()); out != outcomeIdle {
		t.Errorf("final outcome = %v, want idle", out)
	}
}

func TestReconcileIdleOnEmptyBuffer(t *testing.T) {
	s := newSynchronizer(t, nil)

	if out := s.reconcile(context.Background()); out != outcomeIdle {
		t.Errorf("both empty: outcome = %v, want idle", out)
	}

	s.PushVisual(model.VisualSample{TS: 0})
	if out := s.reconcile(context.Background()); out != outcomeIdle {
		t.Errorf("audio empty: outcome = %v, want idle", out)
	}
	if s.visual.Len() != 1 {
		t.Errorf("idle step must not mutate buffers; visual pending = %d", s.visual.Len())
	}
}

func TestConsumerPanicDoesNotStopReconciliation(t *testing.T) {
	calls := 0
	s := newSynchronizer(t, func(model.SyncedEvent) {
		calls++
		panic("consumer exploded")
	})

	s.PushVisual(model.VisualSample{TS: 0})
	s.PushAudio(model.AudioSample{TS: 10})
	s.PushVisual(model.VisualSample{TS: 100})
	s.PushAudio(model.AudioSample{TS: 110})

	if out := s.reconcile(context.Background()); out != outcomeMatch {
		t.Fatalf("first outcome = %v, want match", out)
	}
	if out := s.reconcile(context.Background()); out != outcomeMatch {
		t.Fatalf("second outcome = %v, want match", out)
	}

	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
	if got := s.Stats().ConsumerFaults; got != 2 {
		t.Errorf("consumer faults = %d, want 2", got)
	}
	// The pops committed before the panic; nothing is re-emitted.
	if s.visual.Len() != 0 || s.audio.Len() != 0 {
		t.Errorf("buffers not drained: visual=%d audio=%d", s.visual.Len(), s.audio.Len())
	}
}

func TestStartStopLifecycle(t *testing.T) {
	events := make(chan model.SyncedEvent, 16)
	s := newSynchronizer(t, func(ev model.SyncedEvent) { events <- ev },
		WithTolerance(20*time.Millisecond))

	ctx := context.Background()
	s.Start(ctx)
	if !s.Running() {
		t.Fatal("expected running after start")
	}
	// Start while running is a no-op.
	s.Start(ctx)

	s.PushVisual(model.VisualSample{TS: 0})
	s.PushAudio(model.AudioSample{TS: 5})

	select {
	case ev := <-events:
		if ev.TS != 2 {
			t.Errorf("event TS = %d, want 2", ev.TS)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for periodic match")
	}

	// Stop clears pending samples and is idempotent.
	s.PushVisual(model.VisualSample{TS: 1000})
	s.Stop()
	s.Stop()
	if s.Running() {
		t.Error("expected stopped after stop")
	}
	if st := s.Stats(); st.VisualPending != 0 || st.AudioPending != 0 {
		t.Errorf("buffers not cleared on stop: %+v", st)
	}

	// A stopped synchronizer can be started again.
	s.Start(ctx)
	s.PushVisual(model.VisualSample{TS: 2000})
	s.PushAudio(model.AudioSample{TS: 2004})
	select {
	case ev := <-events:
		if ev.TS != 2002 {
			t.Errorf("event TS after restart = %d, want 2002", ev.TS)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for match after restart")
	}
	s.Stop()
}

func TestContextCancelHaltsTask(t *testing.T) {
	s := newSynchronizer(t, nil, WithTolerance(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	// The loop observes cancellation; Stop still completes cleanly.
	time.Sleep(30 * time.Millisecond)
	s.Stop()
	if s.Running() {
		t.Error("expected stopped")
	}
}

func TestRestartAfterContextCancel(t *testing.T) {
	events := make(chan model.SyncedEvent, 4)
	s := newSynchronizer(t, func(ev model.SyncedEvent) { events <- ev },
		WithTolerance(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	deadline := time.Now().Add(time.Second)
	for s.Running() {
		if time.Now().After(deadline) {
			t.Fatal("Running still true after context cancellation")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Start is not a no-op once the cancelled task has exited.
	s.Start(context.Background())
	defer s.Stop()
	if !s.Running() {
		t.Fatal("expected running after restart")
	}

	s.PushVisual(model.VisualSample{TS: 100})
	s.PushAudio(model.AudioSample{TS: 104})
	select {
	case ev := <-events:
		if ev.TS != 102 {
			t.Errorf("event TS = %d, want 102", ev.TS)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for match after restart")
	}
}

func TestStatsCounters(t *testing.T) {
	s := newSynchronizer(t, nil, WithTolerance(100*time.Millisecond), WithBufferCapacity(2))

	s.PushVisual(model.VisualSample{TS: 0})
	s.PushVisual(model.VisualSample{TS: 10})
	s.PushVisual(model.VisualSample{TS: 20}) // evicts TS 0
	s.PushAudio(model.AudioSample{TS: 30})

	s.reconcile(context.Background()) // match 10/30

	st := s.Stats()
	if st.Matched != 1 {
		t.Errorf("matched = %d, want 1", st.Matched)
	}
	if st.VisualEvictions != 1 {
		t.Errorf("visual evictions = %d, want 1", st.VisualEvictions)
	}
	if st.VisualPending != 1 || st.AudioPending != 0 {
		t.Errorf("pending = (%d, %d), want (1, 0)", st.VisualPending, st.AudioPending)
	}
}
