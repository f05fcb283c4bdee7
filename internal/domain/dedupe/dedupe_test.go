package dedupe

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestSeenAndRecord(t *testing.T) {
	d := NewInMemoryDeduper()
	ctx := context.Background()

	if d.SeenAndRecord(ctx, "a") {
		t.Error("first record of a should not be seen")
	}
	if !d.SeenAndRecord(ctx, "a") {
		t.Error("second record of a should be seen")
	}
	if d.SeenAndRecord(ctx, "b") {
		t.Error("first record of b should not be seen")
	}
	if got := d.Size(); got != 2 {
		t.Errorf("size = %d, want 2", got)
	}
}

func TestUnrecordAllowsRetry(t *testing.T) {
	d := NewInMemoryDeduper()
	ctx := context.Background()

	d.SeenAndRecord(ctx, "a")
	d.Unrecord(ctx, "a")

	if d.SeenAndRecord(ctx, "a") {
		t.Error("unrecorded id should be recordable again")
	}
}

func TestFIFOEviction(t *testing.T) {
	d := NewInMemoryDeduper(WithMaxSize(3))
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		d.SeenAndRecord(ctx, id)
	}

	// "a" was the oldest entry and must be forgotten.
	if d.SeenAndRecord(ctx, "a") {
		t.Error("oldest id should have been evicted")
	}
	// "d" is still tracked.
	if !d.SeenAndRecord(ctx, "d") {
		t.Error("recent id should still be tracked")
	}
	if got := d.Size(); got != 3 {
		t.Errorf("size = %d, want 3", got)
	}
}

func TestConcurrentRecording(t *testing.T) {
	d := NewInMemoryDeduper(WithMaxSize(1000))
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("g%d-%d", g, i))
			}
		}(g)
	}
	wg.Wait()

	if got := d.Size(); got != 800 {
		t.Errorf("size = %d, want 800", got)
	}
}
